package hostfuncs

import (
	"context"
	"fmt"

	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// HostFunc is a typed capability implementation. Returning a
// *entities.HostFault controls the code the guest sees; any other error is
// reported as an internal fault.
type HostFunc[Req any, Resp any] func(context.Context, Req) (Resp, error)

// ByteHandler serves one encoded request. This is the form the registry
// and WASM runtimes deal in.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewHandler wraps a typed HostFunc into a ByteHandler using codec for both
// directions. A request that does not decode is a bad request.
func NewHandler[Req any, Resp any](codec wireformat.Codec, fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if err := codec.Unmarshal(payload, &req); err != nil {
			return nil, BadRequest("invalid request: %v", err)
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}

		out, err := codec.Marshal(resp)
		if err != nil {
			return nil, Internal(fmt.Sprintf("failed to encode response: %v", err))
		}
		return out, nil
	}
}

// NewCBORHandler wraps fn with the CBOR envelope guests use.
func NewCBORHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return NewHandler(wireformat.CBOR, fn)
}
