//go:build !wasip1

package log

import (
	"context"
	"log/slog"
	"os"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// Native builds have no host to ship to, so records go to stderr.
var nativeLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

func emit(rec entities.LogRecord) error {
	Replay(context.Background(), nativeLogger, rec)
	return nil
}
