package wasm

import (
	"encoding/json"
	"sync/atomic"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// EntryPoints is what a policy module exposes to the host.
// Every method must return a well-formed JSON reply.
type EntryPoints interface {
	Validate(payload []byte) []byte
	ValidateSettings(payload []byte) []byte
	ProtocolVersion() []byte
}

var registered atomic.Pointer[EntryPoints]

// Register installs the module's entry points. The last registration wins.
func Register(ep EntryPoints) {
	registered.Store(&ep)
}

// Registered returns the installed entry points, or a fallback that rejects
// every call when nothing was registered.
func Registered() EntryPoints {
	if ep := registered.Load(); ep != nil && *ep != nil {
		return *ep
	}
	return unregistered{}
}

const unregisteredMessage = "no policy registered"

type unregistered struct{}

func (unregistered) Validate([]byte) []byte {
	out, _ := json.Marshal(entities.ValidationResponse{
		Status: &entities.Status{Code: 500, Message: unregisteredMessage},
	})
	return out
}

func (unregistered) ValidateSettings([]byte) []byte {
	out, _ := json.Marshal(entities.SettingsValidationResponse{Message: unregisteredMessage})
	return out
}

func (unregistered) ProtocolVersion() []byte {
	out, _ := json.Marshal(entities.ProtocolV2)
	return out
}
