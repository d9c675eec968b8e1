// Package host runs policy modules under wazero.
//
// A Runtime instantiates the WASI preview 1 imports and the policy_host
// module once, backed by a hostfuncs.Registry. Each loaded module becomes
// a PolicyInstance whose methods drive the validate, validate_settings and
// protocol_version exports and decode their JSON replies.
//
//	registry, _ := hostfuncs.NewRegistry(hostfuncs.WithBundle(hostfuncs.NetBundle()))
//	rt, err := host.NewRuntime(ctx, host.WithCapabilities(registry))
//	if err != nil {
//	    return err
//	}
//	defer rt.Close(ctx)
//
//	policy, err := rt.Load(ctx, wasmBytes, host.WithPolicyName("require-labels"))
//	resp, err := policy.Validate(ctx, payload)
package host
