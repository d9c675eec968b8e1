package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// Guest exports driven by PolicyInstance.
const (
	exportValidate         = "validate"
	exportValidateSettings = "validate_settings"
	exportProtocolVersion  = "protocol_version"
	exportAllocate         = "allocate"
)

// PolicyInstance is an instantiated policy module. Calls must not overlap:
// a guest is single threaded.
type PolicyInstance struct {
	module   api.Module
	compiled wazero.CompiledModule
	name     string
}

// Name returns the instance name used in logs and capability calls.
func (p *PolicyInstance) Name() string {
	return p.name
}

// Validate sends a ValidationRequest document to the validate export.
func (p *PolicyInstance) Validate(ctx context.Context, payload []byte) (entities.ValidationResponse, error) {
	var resp entities.ValidationResponse
	err := p.call(ctx, exportValidate, payload, &resp)
	return resp, err
}

// ValidateSettings sends a settings document to the validate_settings export.
func (p *PolicyInstance) ValidateSettings(ctx context.Context, settings []byte) (entities.SettingsValidationResponse, error) {
	var resp entities.SettingsValidationResponse
	err := p.call(ctx, exportValidateSettings, settings, &resp)
	return resp, err
}

// ProtocolVersion asks the module which calling convention it speaks.
func (p *PolicyInstance) ProtocolVersion(ctx context.Context) (entities.ProtocolVersion, error) {
	var v entities.ProtocolVersion
	err := p.call(ctx, exportProtocolVersion, nil, &v)
	return v, err
}

// Close releases the module instance.
func (p *PolicyInstance) Close(ctx context.Context) error {
	if err := p.module.Close(ctx); err != nil {
		return err
	}
	return p.compiled.Close(ctx)
}

func (p *PolicyInstance) call(ctx context.Context, name string, input []byte, v any) error {
	packed, err := p.callRaw(ctx, name, input)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	data, err := p.readPacked(packed)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := wireformat.JSON.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *PolicyInstance) callRaw(ctx context.Context, name string, input []byte) (uint64, error) {
	f := p.module.ExportedFunction(name)
	if f == nil {
		return 0, fmt.Errorf("export %q not found", name)
	}

	var results []uint64
	var err error

	if name == exportProtocolVersion {
		results, err = f.Call(ctx)
	} else {
		ptr, werr := p.write(ctx, input)
		if werr != nil {
			return 0, werr
		}
		results, err = f.Call(ctx, uint64(ptr), uint64(len(input)))
	}

	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("export %q returned no results", name)
	}
	return results[0], nil
}

// write copies input into memory allocated by the guest. Empty input is
// passed as a null region.
func (p *PolicyInstance) write(ctx context.Context, input []byte) (uint32, error) {
	if len(input) == 0 {
		return 0, nil
	}
	allocate := p.module.ExportedFunction(exportAllocate)
	if allocate == nil {
		return 0, fmt.Errorf("guest does not export %q", exportAllocate)
	}
	res, err := allocate.Call(ctx, uint64(len(input)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	ptr := uint32(res[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if !p.module.Memory().Write(ptr, input) {
		return 0, fmt.Errorf("failed to write input to guest memory")
	}
	return ptr, nil
}

func (p *PolicyInstance) readPacked(packed uint64) ([]byte, error) {
	ptr := uint32(packed >> 32) //nolint:gosec // G115: Packed format stores 32-bit values
	length := uint32(packed)    //nolint:gosec // G115: Packed format stores 32-bit values
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("null response from policy")
	}
	data, ok := p.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from memory")
	}
	return append([]byte(nil), data...), nil
}
