package capabilities

import (
	stdErrors "errors"
	"log/slog"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
	"github.com/warden-dev/policy-sdk-go/infrastructure/wasm"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// Client issues capability calls. It holds no state between calls.
type Client struct {
	host   ports.HostCaller
	codec  wireformat.Codec
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	host   ports.HostCaller
	codec  wireformat.Codec
	logger *slog.Logger
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		codec: wireformat.CBOR,
	}
}

// WithHost sets the boundary the client calls through. Defaults to the
// WASM host imports.
func WithHost(h ports.HostCaller) Option {
	return func(c *clientConfig) {
		c.host = h
	}
}

// WithCodec overrides the payload codec. Hosts expect CBOR unless they
// were built to accept something else.
func WithCodec(codec wireformat.Codec) Option {
	return func(c *clientConfig) {
		c.codec = codec
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.host == nil {
		cfg.host = wasm.NewHost()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Client{host: cfg.host, codec: cfg.codec, logger: cfg.logger}
}

// Invoke performs exactly one call of op. It never retries: host
// capabilities may have side effects that must not be repeated silently.
//
// Failures are *errors.CapabilityError:
//   - HostRejected with the host's code and message when the host refuses
//     or fails the call, or code 0 when the boundary itself failed;
//   - MalformedResponse when the reply envelope or its payload does not
//     decode;
//   - MalformedRequest when req cannot be encoded.
func Invoke[Req, Resp any](c *Client, op Operation, req Req) (Resp, error) {
	var resp Resp

	payload, err := c.codec.Marshal(req)
	if err != nil {
		return resp, &errors.CapabilityError{
			Kind:      errors.CapabilityMalformedRequest,
			Binding:   op.binding,
			Operation: op.name,
			Err:       err,
		}
	}

	c.logger.Debug("capability call", "operation", op.String(), "request_bytes", len(payload))

	raw, err := c.host.HostCall(op.binding, op.name, payload)
	var replyErr *errors.DecodeError
	if stdErrors.As(err, &replyErr) {
		c.logger.Warn("capability reply could not be decoded", "operation", op.String(), "error", err)
		return resp, &errors.CapabilityError{
			Kind:      errors.CapabilityMalformedResponse,
			Binding:   op.binding,
			Operation: op.name,
			Err:       err,
		}
	}
	if err != nil {
		capErr := &errors.CapabilityError{
			Kind:      errors.CapabilityHostRejected,
			Binding:   op.binding,
			Operation: op.name,
			Message:   err.Error(),
			Err:       err,
		}
		var fault *entities.HostFault
		if stdErrors.As(err, &fault) {
			capErr.Code = fault.Code
			capErr.Message = fault.Message
		}
		c.logger.Warn("capability call rejected", "operation", op.String(), "code", capErr.Code, "message", capErr.Message)
		return resp, capErr
	}

	if err := c.codec.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("capability returned malformed response", "operation", op.String(), "error", err)
		return resp, &errors.CapabilityError{
			Kind:      errors.CapabilityMalformedResponse,
			Binding:   op.binding,
			Operation: op.name,
			Err:       err,
		}
	}
	return resp, nil
}
