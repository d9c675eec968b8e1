package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/warden-dev/policy-sdk-go/hostfuncs"
	wzadapter "github.com/warden-dev/policy-sdk-go/infrastructure/wazero"
)

// Runtime hosts policy modules.
type Runtime struct {
	runtime wazero.Runtime
	config  runtimeConfig
}

// NewRuntime creates a runtime with WASI and the policy_host imports
// registered.
func NewRuntime(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.registry == nil {
		reg, err := hostfuncs.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		cfg.registry = reg
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(cfg.memoryLimitPages).
		WithCloseOnContextDone(true))

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	if err := wzadapter.RegisterWithRuntime(ctx, rt, cfg.registry,
		wzadapter.WithLogger(cfg.logger),
		wzadapter.WithMaxRequestSize(cfg.maxRequestSize),
	); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return &Runtime{runtime: rt, config: cfg}, nil
}

// Close releases the runtime and every module loaded into it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Load compiles and instantiates a policy module.
func (r *Runtime) Load(ctx context.Context, wasmBytes []byte, opts ...LoadOption) (*PolicyInstance, error) {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	compiled, err := r.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	modConfig := wazero.NewModuleConfig().
		WithName(cfg.name).
		WithStartFunctions("_initialize")

	mod, err := r.runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	name := cfg.name
	if name == "" {
		name = "anonymous"
	}
	r.config.logger.DebugContext(ctx, "policy module loaded", "policy", name, "exports", len(compiled.ExportedFunctions()))

	return &PolicyInstance{module: mod, compiled: compiled, name: name}, nil
}
