package policytest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
	"github.com/warden-dev/policy-sdk-go/hostfuncs"
)

// Compile-time interface compliance check
var _ ports.HostCaller = (*FakeHost)(nil)

// Call is one capability call observed by a FakeHost.
type Call struct {
	Operation capabilities.Operation
	Payload   []byte
}

// FakeHost serves capability calls in process.
type FakeHost struct {
	registry *hostfuncs.Registry
	calls    []Call
	mu       sync.Mutex
}

// NewFakeHost builds a FakeHost from registry options. Handler panics
// become 500 faults, as on a real host.
func NewFakeHost(t testing.TB, opts ...hostfuncs.RegistryOption) *FakeHost {
	t.Helper()

	h := &FakeHost{}
	all := append([]hostfuncs.RegistryOption{
		hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware(), h.record()),
	}, opts...)

	reg, err := hostfuncs.NewRegistry(all...)
	require.NoError(t, err, "fake host registry")
	h.registry = reg
	return h
}

func (h *FakeHost) record() hostfuncs.Middleware {
	return func(next hostfuncs.ByteHandler) hostfuncs.ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if op, ok := hostfuncs.OperationFromContext(ctx); ok {
				h.mu.Lock()
				h.calls = append(h.calls, Call{Operation: op, Payload: append([]byte(nil), payload...)})
				h.mu.Unlock()
			}
			return next(ctx, payload)
		}
	}
}

// HostCall implements ports.HostCaller.
func (h *FakeHost) HostCall(binding, operation string, payload []byte) ([]byte, error) {
	return h.registry.HostCall(binding, operation, payload)
}

// Client returns a capability client wired to h.
func (h *FakeHost) Client(opts ...capabilities.Option) *capabilities.Client {
	return capabilities.NewClient(append([]capabilities.Option{capabilities.WithHost(h)}, opts...)...)
}

// Calls returns the served calls in order. Calls to unregistered
// operations never reach a handler and are not recorded.
func (h *FakeHost) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// CallCount returns how many times op was served.
func (h *FakeHost) CallCount(op capabilities.Operation) int {
	n := 0
	for _, c := range h.Calls() {
		if c.Operation == op {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (h *FakeHost) Reset() {
	h.mu.Lock()
	h.calls = nil
	h.mu.Unlock()
}

// Respond answers every call of op with resp.
func Respond[Resp any](op capabilities.Operation, resp Resp) hostfuncs.RegistryOption {
	return hostfuncs.WithHandler(op, func(context.Context, struct{}) (Resp, error) {
		return resp, nil
	})
}

// Fail rejects every call of op with a fault.
func Fail(op capabilities.Operation, code int32, message string) hostfuncs.RegistryOption {
	return hostfuncs.WithByteHandler(op, func(context.Context, []byte) ([]byte, error) {
		return nil, entities.NewHostFault(code, message)
	})
}
