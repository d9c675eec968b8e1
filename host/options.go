package host

import (
	"log/slog"

	"github.com/warden-dev/policy-sdk-go/hostfuncs"
)

// Option configures a Runtime.
type Option func(*runtimeConfig)

type runtimeConfig struct {
	registry         *hostfuncs.Registry
	logger           *slog.Logger
	memoryLimitPages uint32
	maxRequestSize   uint32
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		logger:           slog.Default(),
		memoryLimitPages: 4096, // 256 MiB
		maxRequestSize:   hostfuncs.DefaultMaxRequestSize,
	}
}

// WithCapabilities serves host_call from registry. Without it every
// capability call fails with "capability not registered".
func WithCapabilities(registry *hostfuncs.Registry) Option {
	return func(c *runtimeConfig) {
		c.registry = registry
	}
}

// WithLogger sets the logger guest log records are replayed through.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runtimeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMemoryLimitPages caps guest linear memory, in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *runtimeConfig) {
		if pages > 0 {
			c.memoryLimitPages = pages
		}
	}
}

// WithMaxRequestSize limits each capability payload read from a guest.
func WithMaxRequestSize(size uint32) Option {
	return func(c *runtimeConfig) {
		if size > 0 {
			c.maxRequestSize = size
		}
	}
}

// LoadOption configures a single Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	name string
}

// WithPolicyName names the module instance. The name tags capability
// calls and log records; it must be unique within a Runtime.
func WithPolicyName(name string) LoadOption {
	return func(c *loadConfig) {
		c.name = name
	}
}
