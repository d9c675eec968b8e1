// Package wazero registers the policy_host import module with a wazero
// runtime.
//
// The module exports the two functions a policy guest imports:
//
//   - host_call(binding, operation, payload) takes three packed ptr/len
//     regions and returns a packed region holding a CBOR entities.HostReply
//   - log_message(record) takes a packed CBOR entities.LogRecord
//
// Replies are written into guest memory obtained through the guest's
// allocate export; the guest copies and frees them.
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.NetBundle()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	err = wzadapter.RegisterWithRuntime(ctx, runtime, registry,
//	    wzadapter.WithLogger(logger),
//	)
package wazero
