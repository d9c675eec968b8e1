//go:build wasip1

package log

import (
	"fmt"
	"log/slog"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/internal/abi"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// host_log_message hands a CBOR LogRecord to the host.
//
//go:wasmimport policy_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(recordPacked uint64)

func emit(rec entities.LogRecord) error {
	data, err := wireformat.Encode(rec)
	if err != nil {
		// Fallback to stdout; the record is not lost entirely.
		fmt.Printf("sdk: failed to encode log record for host: %v, original: %s\n", err, rec.Message)
		return nil
	}

	packed := abi.PtrFromBytes(data)
	host_log_message(packed)
	abi.DeallocatePacked(packed)
	return nil
}

// init routes the default slog logger to the host.
func init() {
	slog.SetDefault(slog.New(NewHandler()))
}
