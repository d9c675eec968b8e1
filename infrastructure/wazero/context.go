package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/warden-dev/policy-sdk-go/hostfuncs"
)

// PolicyName returns the policy recorded in ctx, falling back to the name
// the guest module was instantiated with.
func PolicyName(ctx context.Context, mod api.Module) string {
	if name, ok := hostfuncs.PolicyNameFromContext(ctx); ok {
		return name
	}
	return mod.Name()
}
