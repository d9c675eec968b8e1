package hostfuncs

import (
	"context"
	"log/slog"
	"time"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

// Middleware wraps a ByteHandler to add cross-cutting behavior.
//
// Example usage:
//
//	tracing := func(next ByteHandler) ByteHandler {
//	    return func(ctx context.Context, payload []byte) ([]byte, error) {
//	        span := start(ctx)
//	        defer span.End()
//	        return next(ctx, payload)
//	    }
//	}
type Middleware func(next ByteHandler) ByteHandler

// PanicRecoveryMiddleware turns a handler panic into an internal fault
// instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = nil
					err = panicFault(r)
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every capability call at debug level and every
// failure at warn level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			attrs := []any{"operation", operationOf(ctx).String()}
			if name, ok := PolicyNameFromContext(ctx); ok {
				attrs = append(attrs, "policy", name)
			}

			start := time.Now()
			resp, err := next(ctx, payload)
			attrs = append(attrs, "duration", time.Since(start), "request_bytes", len(payload))
			if err != nil {
				logger.WarnContext(ctx, "capability call failed", append(attrs, "error", errors.ToErrorDetail(err))...)
			} else {
				logger.DebugContext(ctx, "capability call served", append(attrs, "response_bytes", len(resp))...)
			}
			return resp, err
		}
	}
}

// CapabilityGate rejects every operation not in allowed with a 403 fault.
// Hosts use it to grant a policy only the capabilities it declared.
func CapabilityGate(allowed ...capabilities.Operation) Middleware {
	granted := make(map[capabilities.Operation]struct{}, len(allowed))
	for _, op := range allowed {
		granted[op] = struct{}{}
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			op := operationOf(ctx)
			if _, ok := granted[op]; !ok {
				return nil, denied(op)
			}
			return next(ctx, payload)
		}
	}
}

func operationOf(ctx context.Context) capabilities.Operation {
	op, _ := OperationFromContext(ctx)
	return op
}
}
