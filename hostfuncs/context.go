package hostfuncs

import (
	"context"

	"github.com/warden-dev/policy-sdk-go/capabilities"
)

type operationKey struct{}

// WithOperation records the capability operation being served. The registry
// sets it before the middleware chain runs, so it survives any wrapping a
// middleware applies to the context.
func WithOperation(ctx context.Context, op capabilities.Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext returns the operation being served, if recorded.
func OperationFromContext(ctx context.Context) (capabilities.Operation, bool) {
	op, ok := ctx.Value(operationKey{}).(capabilities.Operation)
	return op, ok
}

type policyNameKey struct{}

// WithPolicyName records which policy module is calling.
func WithPolicyName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, policyNameKey{}, name)
}

// PolicyNameFromContext returns the calling policy module, if recorded.
func PolicyNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(policyNameKey{}).(string)
	return name, ok
}
