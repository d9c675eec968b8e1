package hostfuncs

import (
	stdErrors "errors"
	"fmt"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

// BadRequest is the fault for a request the handler cannot accept.
func BadRequest(format string, args ...any) *entities.HostFault {
	return entities.NewHostFault(errors.FaultBadRequest, fmt.Sprintf(format, args...))
}

// NotFound is the fault for a lookup that found nothing.
func NotFound(format string, args ...any) *entities.HostFault {
	return entities.NewHostFault(errors.FaultNotFound, fmt.Sprintf(format, args...))
}

// Internal is the fault for an unexpected handler failure.
func Internal(message string) *entities.HostFault {
	return entities.NewHostFault(errors.FaultInternal, message)
}

func notRegistered(binding, operation string) *entities.HostFault {
	return entities.NewHostFault(errors.FaultNotFound, "capability not registered: "+binding+"/"+operation)
}

func denied(op capabilities.Operation) *entities.HostFault {
	return entities.NewHostFault(errors.FaultDenied, "capability access denied: "+op.String())
}

// panicFault converts a recovered panic value into a fault.
func panicFault(v any) *entities.HostFault {
	var msg string
	if err, ok := v.(error); ok {
		msg = err.Error()
	} else if s, ok := v.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	return Internal("panic: " + msg)
}

// FaultFrom converts a handler error into the fault sent to the guest. A
// HostFault anywhere in the chain is used as is.
func FaultFrom(err error) *entities.HostFault {
	var fault *entities.HostFault
	if stdErrors.As(err, &fault) {
		return fault
	}
	return Internal(err.Error())
}
