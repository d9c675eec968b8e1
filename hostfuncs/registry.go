package hostfuncs

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
)

// DefaultMaxRequestSize limits the size of a request read from guest
// memory (1MB).
const DefaultMaxRequestSize = 1 * 1024 * 1024

// Compile-time interface compliance check
var _ ports.HostCaller = (*Registry)(nil)

// Registry is an immutable set of capability handlers keyed by operation.
// Once created via NewRegistry, handlers cannot be added or removed, so
// lookups need no locking.
type Registry struct {
	handlers map[capabilities.Operation]ByteHandler
	ops      []capabilities.Operation // sorted for consistent iteration
}

// RegistryOption configures a Registry under construction.
type RegistryOption func(*registryBuilder)

type registryBuilder struct {
	handlers   map[capabilities.Operation]ByteHandler
	middleware []Middleware
	errors     []error
}

// NewRegistry creates a Registry. It fails if an operation is registered
// twice.
//
// Example usage:
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//	    hostfuncs.WithBundle(hostfuncs.NetBundle()),
//	    hostfuncs.WithHandler(capabilities.OCIManifestDigest, digestFn),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{
		handlers: make(map[capabilities.Operation]ByteHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	ops := make([]capabilities.Operation, 0, len(b.handlers))
	for op := range b.handlers {
		ops = append(ops, op)
	}
	slices.SortFunc(ops, func(a, b capabilities.Operation) int {
		return strings.Compare(a.String(), b.String())
	})

	// First middleware wraps outermost.
	wrapped := make(map[capabilities.Operation]ByteHandler, len(b.handlers))
	for op, handler := range b.handlers {
		h := handler
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		wrapped[op] = h
	}

	return &Registry{handlers: wrapped, ops: ops}, nil
}

// Invoke serves one call of op. Failures are carried in the reply, never
// returned: the guest always receives an envelope it can decode.
func (r *Registry) Invoke(ctx context.Context, op capabilities.Operation, payload []byte) entities.HostReply {
	handler, ok := r.handlers[op]
	if !ok {
		return entities.HostReply{Error: notRegistered(op.Binding(), op.Name())}
	}

	out, err := handler(WithOperation(ctx, op), payload)
	if err != nil {
		return entities.HostReply{Error: FaultFrom(err)}
	}
	return entities.HostReply{Payload: out}
}

// InvokeNamed resolves binding and operation as sent by a guest and serves
// the call.
func (r *Registry) InvokeNamed(ctx context.Context, binding, operation string, payload []byte) entities.HostReply {
	op, ok := capabilities.Lookup(binding, operation)
	if !ok {
		return entities.HostReply{Error: notRegistered(binding, operation)}
	}
	return r.Invoke(ctx, op, payload)
}

// HostCall implements ports.HostCaller, serving calls in process.
func (r *Registry) HostCall(binding, operation string, payload []byte) ([]byte, error) {
	reply := r.InvokeNamed(context.Background(), binding, operation, payload)
	if reply.Failed() {
		return nil, reply.Error
	}
	return reply.Payload, nil
}

// Has reports whether op has a handler.
func (r *Registry) Has(op capabilities.Operation) bool {
	_, ok := r.handlers[op]
	return ok
}

// Operations returns the registered operations in a stable order.
func (r *Registry) Operations() []capabilities.Operation {
	return slices.Clone(r.ops)
}

func (b *registryBuilder) addHandler(op capabilities.Operation, handler ByteHandler) error {
	if op.IsZero() {
		return fmt.Errorf("handler operation cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("nil handler for %s", op)
	}
	if _, exists := b.handlers[op]; exists {
		return fmt.Errorf("duplicate handler for %s", op)
	}
	b.handlers[op] = handler
	return nil
}

// WithByteHandler registers a raw ByteHandler for op.
// Use WithHandler for typed registration.
func WithByteHandler(op capabilities.Operation, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addHandler(op, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithHandler registers a typed HostFunc for op with CBOR encoding.
func WithHandler[Req any, Resp any](op capabilities.Operation, fn HostFunc[Req, Resp]) RegistryOption {
	return WithByteHandler(op, NewCBORHandler(fn))
}

// WithMiddleware adds middleware. The first one added wraps outermost.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
