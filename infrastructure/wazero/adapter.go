package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/hostfuncs"
	"github.com/warden-dev/policy-sdk-go/infrastructure/wasm"
	"github.com/warden-dev/policy-sdk-go/log"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// Import function names, as declared by the guest.
const (
	HostCallFunction   = "host_call"
	LogMessageFunction = "log_message"
)

// maxNameSize bounds the binding and operation strings read from the guest.
const maxNameSize = 256

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives guest log records and adapter failures.
	Logger *slog.Logger

	// ModuleName is the host module name (default: "policy_host").
	ModuleName string

	// MaxRequestSize limits the payload read from guest memory.
	// Default is 1MB.
	MaxRequestSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "policy_host").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithLogger sets the logger guest records are replayed through.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     wasm.ImportModule,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
		Logger:         slog.Default(),
	}
}

// RegisterWithRuntime instantiates the host module serving registry on
// runtime. It must run before any policy module is instantiated.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.Registry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = handleHostCall(ctx, mod, stack, registry, cfg)
		}), []api.ValueType{api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
		Export(HostCallFunction)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			handleLogMessage(ctx, mod, stack[0], cfg)
		}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{}).
		Export(LogMessageFunction)

	_, err := builder.Instantiate(ctx)
	return err
}

func handleHostCall(ctx context.Context, mod api.Module, stack []uint64, registry *hostfuncs.Registry, cfg AdapterConfig) uint64 {
	policy := PolicyName(ctx, mod)
	ctx = hostfuncs.WithPolicyName(ctx, policy)

	binding, err := readGuest(mod, stack[0], maxNameSize)
	if err != nil {
		return writeReply(ctx, mod, cfg.Logger, entities.HostReply{Error: hostfuncs.BadRequest("binding: %v", err)})
	}
	operation, err := readGuest(mod, stack[1], maxNameSize)
	if err != nil {
		return writeReply(ctx, mod, cfg.Logger, entities.HostReply{Error: hostfuncs.BadRequest("operation: %v", err)})
	}
	payload, err := readGuest(mod, stack[2], cfg.MaxRequestSize)
	if err != nil {
		cfg.Logger.ErrorContext(ctx, "wazero: rejected capability payload", "policy", policy, "binding", string(binding), "operation", string(operation), "error", err)
		return writeReply(ctx, mod, cfg.Logger, entities.HostReply{Error: hostfuncs.BadRequest("payload: %v", err)})
	}

	reply := registry.InvokeNamed(ctx, string(binding), string(operation), payload)
	return writeReply(ctx, mod, cfg.Logger, reply)
}

func handleLogMessage(ctx context.Context, mod api.Module, packed uint64, cfg AdapterConfig) {
	policy := PolicyName(ctx, mod)

	data, err := readGuest(mod, packed, cfg.MaxRequestSize)
	if err != nil {
		cfg.Logger.WarnContext(ctx, "wazero: unreadable guest log record", "policy", policy, "error", err)
		return
	}

	var rec entities.LogRecord
	if err := wireformat.Decode(data, &rec); err != nil {
		cfg.Logger.WarnContext(ctx, "wazero: malformed guest log record", "policy", policy, "error", err)
		return
	}
	log.Replay(ctx, cfg.Logger, rec, slog.String("policy", policy))
}

// readGuest copies the region packed points to. The copy outlives the
// guest's own buffer, which it frees after the call.
func readGuest(mod api.Module, packed uint64, limit uint32) ([]byte, error) {
	ptr, length := unpackPtrLen(packed)
	if length == 0 {
		return nil, nil
	}
	if length > limit {
		return nil, fmt.Errorf("request size %d exceeds maximum %d bytes", length, limit)
	}
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("region %#x+%d is outside guest memory", ptr, length)
	}
	return append([]byte(nil), data...), nil
}

// writeReply encodes reply into guest memory. Returns packed ptr+len or 0
// on failure, which the guest reports as a transport error.
func writeReply(ctx context.Context, mod api.Module, logger *slog.Logger, reply entities.HostReply) uint64 {
	data, err := wireformat.Encode(reply)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to encode host reply", "error", err)
		return 0
	}
	return writeResponse(ctx, mod, logger, data)
}

// writeResponse allocates memory in the guest and writes data into it.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, mod api.Module, logger *slog.Logger, data []byte) uint64 {
	allocateFn := mod.ExportedFunction("allocate")
	if allocateFn == nil {
		logger.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		logger.ErrorContext(ctx, "wazero: failed to call guest allocate", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !mod.Memory().Write(ptr, data) {
		logger.ErrorContext(ctx, "wazero: failed to write response to guest memory")
		return 0
	}

	return packPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by guest allocate
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64. Unlike the
// guest helper it never panics.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
