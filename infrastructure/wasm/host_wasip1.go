//go:build wasip1

package wasm

import (
	"fmt"

	"github.com/warden-dev/policy-sdk-go/internal/abi"
)

func rawHostCall(binding, operation string, payload []byte) ([]byte, error) {
	bindingPacked := abi.PtrFromBytes([]byte(binding))
	operationPacked := abi.PtrFromBytes([]byte(operation))
	payloadPacked := abi.PtrFromBytes(payload)
	defer abi.DeallocatePacked(bindingPacked)
	defer abi.DeallocatePacked(operationPacked)
	defer abi.DeallocatePacked(payloadPacked)

	replyPacked := host_call(bindingPacked, operationPacked, payloadPacked)
	if replyPacked == 0 {
		return nil, fmt.Errorf("host returned no reply for %s/%s", binding, operation)
	}
	defer abi.DeallocatePacked(replyPacked)

	return abi.BytesFromPtr(replyPacked), nil
}
