package entities

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the calling convention a policy module speaks.
type ProtocolVersion int

const (
	// ProtocolV1 is the legacy convention.
	ProtocolV1 ProtocolVersion = 1
	// ProtocolV2 is the current convention and the default.
	ProtocolV2 ProtocolVersion = 2
)

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("v%d", int(v))
}

// Valid reports whether v is a known protocol version.
func (v ProtocolVersion) Valid() bool {
	return v == ProtocolV1 || v == ProtocolV2
}

// UnmarshalJSON accepts the integer form and rejects unknown versions.
func (v *ProtocolVersion) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("protocol version: %w", err)
	}
	pv := ProtocolVersion(n)
	if !pv.Valid() {
		return fmt.Errorf("unsupported protocol version %d", n)
	}
	*v = pv
	return nil
}

// ExecutionMode names the calling convention family of the module.
type ExecutionMode string

const (
	ExecutionModeWasm ExecutionMode = "wasm"
)

// PolicyMetadata describes a policy module to the host and to operators.
type PolicyMetadata struct {
	Annotations     map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	SettingsSchema  json.RawMessage   `json:"settingsSchema,omitempty" yaml:"-"`
	Name            string            `json:"name" yaml:"name" validate:"required"`
	Version         string            `json:"version" yaml:"version" validate:"required"`
	Description     string            `json:"description,omitempty" yaml:"description,omitempty"`
	ExecutionMode   ExecutionMode     `json:"executionMode,omitempty" yaml:"executionMode,omitempty"`
	Capabilities    []string          `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	ProtocolVersion ProtocolVersion   `json:"protocolVersion,omitempty" yaml:"protocolVersion,omitempty"`
	Mutating        bool              `json:"mutating" yaml:"mutating"`
	ContextAware    bool              `json:"contextAware" yaml:"contextAware"`
	BackgroundAudit bool              `json:"backgroundAudit" yaml:"backgroundAudit"`
}
