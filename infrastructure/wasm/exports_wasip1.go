//go:build wasip1

package wasm

import (
	"github.com/warden-dev/policy-sdk-go/internal/abi"
)

// Buffers from the previous call were already read by the host, so each
// entry point starts by releasing them.

//go:wasmexport validate
func validate(ptr, length uint32) uint64 {
	return serve(ptr, length, Registered().Validate)
}

//go:wasmexport validate_settings
func validateSettings(ptr, length uint32) uint64 {
	return serve(ptr, length, Registered().ValidateSettings)
}

//go:wasmexport protocol_version
func protocolVersion() uint64 {
	abi.FreeAllTracked()
	return abi.PtrFromBytes(Registered().ProtocolVersion())
}

func serve(ptr, length uint32, fn func([]byte) []byte) uint64 {
	payload := abi.BytesFromPtr(abi.PackPtrLen(ptr, length))
	abi.FreeAllTracked()
	return abi.PtrFromBytes(fn(payload))
}
