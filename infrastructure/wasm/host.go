// Package wasm is the guest side of the sandbox boundary: the policy_host
// imports, the exported entry points and native stand-ins for both.
package wasm

import (
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// ImportModule is the module name the guest imports host functions from.
const ImportModule = "policy_host"

// Compile-time interface compliance check
var _ ports.HostCaller = (*Host)(nil)

// Host implements ports.HostCaller over the policy_host imports.
type Host struct{}

// NewHost creates the guest side of the capability boundary.
func NewHost() *Host {
	return &Host{}
}

// HostCall sends one request to the host and waits for its reply.
func (h *Host) HostCall(binding, operation string, payload []byte) ([]byte, error) {
	raw, err := rawHostCall(binding, operation, payload)
	if err != nil {
		return nil, err
	}
	return unwrapReply(raw)
}

// unwrapReply decodes a HostReply. A fault is returned as the error.
func unwrapReply(raw []byte) ([]byte, error) {
	var reply entities.HostReply
	if err := wireformat.Decode(raw, &reply); err != nil {
		return nil, err
	}
	if reply.Failed() {
		return nil, reply.Error
	}
	return reply.Payload, nil
}
