//go:build wasip1

package wasm

// host_call issues a capability call. All three arguments are packed
// ptr/len regions in guest memory; the reply is a packed region the host
// allocated through the guest's allocate export, holding a CBOR HostReply.
//
//go:wasmimport policy_host host_call
//nolint:revive // intentional snake_case to match WASM import convention
func host_call(bindingPacked, operationPacked, payloadPacked uint64) uint64
