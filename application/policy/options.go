package policy

import (
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

var metadataValidator = validator.New()

// Option configures a Policy.
type Option func(*config)

type config struct {
	metadata *entities.PolicyMetadata
	client   *capabilities.Client
	logger   *slog.Logger
	version  entities.ProtocolVersion
}

func defaultConfig() config {
	return config{
		version: entities.ProtocolV2,
	}
}

// WithMetadata describes the policy. Name and version are required and the
// version must be a semantic version; an invalid description panics, as it
// is fixed when the module is built.
func WithMetadata(md entities.PolicyMetadata) Option {
	if err := metadataValidator.Struct(md); err != nil {
		panic(fmt.Sprintf("policy: invalid metadata: %v", err))
	}
	if _, err := semver.NewVersion(md.Version); err != nil {
		panic(fmt.Sprintf("policy: invalid metadata version %q: %v", md.Version, err))
	}
	return func(c *config) {
		c.metadata = &md
	}
}

// WithCapabilities sets the client handed to the validate function.
// Defaults to a client calling through the WASM host imports.
func WithCapabilities(client *capabilities.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithLogger sets the logger. Defaults to slog.Default(), which inside the
// sandbox ships records to the host.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProtocolVersion sets the version reported by protocol_version.
func WithProtocolVersion(v entities.ProtocolVersion) Option {
	if !v.Valid() {
		panic(fmt.Sprintf("policy: unsupported protocol version %d", int(v)))
	}
	return func(c *config) {
		c.version = v
	}
}
