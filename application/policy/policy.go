// Package policy turns a validate function into the three entry points a
// policy module exposes: validate, validate_settings and protocol_version.
//
// Entry points never fail. Parse errors, capability failures, policy errors
// and panics are all turned into rejections carrying a reason, so the host
// always receives a well-formed reply.
package policy

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/warden-dev/policy-sdk-go/application/request"
	"github.com/warden-dev/policy-sdk-go/application/response"
	"github.com/warden-dev/policy-sdk-go/application/settings"
	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
	"github.com/warden-dev/policy-sdk-go/infrastructure/wasm"
)

// Status codes used for rejections the SDK produces on the policy's behalf.
const (
	CodeBadRequest uint16 = 400
	CodeInternal   uint16 = 500
)

// ValidateFunc decides on one admission request.
type ValidateFunc[S any] func(ctx context.Context, req *Request[S]) (entities.ValidationResponse, error)

// Handler is implemented by every Policy and installed with Register.
type Handler interface {
	Validate(payload []byte) []byte
	ValidateSettings(payload []byte) []byte
	ProtocolVersion() []byte
}

// Policy is a validate function with settings of type S.
type Policy[S any] struct {
	validate ValidateFunc[S]
	client   *capabilities.Client
	logger   *slog.Logger
	metadata entities.PolicyMetadata
	version  entities.ProtocolVersion
}

// New creates a Policy.
func New[S any](fn ValidateFunc[S], opts ...Option) *Policy[S] {
	if fn == nil {
		panic("policy: nil validate function")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.client == nil {
		cfg.client = capabilities.NewClient(capabilities.WithLogger(cfg.logger))
	}

	p := &Policy[S]{
		validate: fn,
		client:   cfg.client,
		logger:   cfg.logger,
		version:  cfg.version,
	}
	if cfg.metadata != nil {
		p.metadata = *cfg.metadata
	}
	p.completeMetadata()
	return p
}

func (p *Policy[S]) completeMetadata() {
	md := &p.metadata
	if md.ProtocolVersion == 0 {
		md.ProtocolVersion = p.version
	}
	if md.ExecutionMode == "" {
		md.ExecutionMode = entities.ExecutionModeWasm
	}
	if len(md.SettingsSchema) == 0 {
		if schema, err := settings.Schema[S](); err == nil {
			md.SettingsSchema = schema
		} else {
			p.logger.Warn("settings schema unavailable", "error", err)
		}
	}
}

// Metadata describes the policy, including the settings schema.
func (p *Policy[S]) Metadata() entities.PolicyMetadata {
	return p.metadata
}

// Evaluate runs the validate function on an encoded request and returns
// the decision. It never panics.
func (p *Policy[S]) Evaluate(ctx context.Context, payload []byte) (resp entities.ValidationResponse) {
	var uid string
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("policy panicked", "uid", uid, "panic", fmt.Sprint(r))
			resp = response.Reject(CodeInternal, fmt.Sprintf("internal error: policy panic: %v", r), response.WithUID(uid))
		}
	}()

	vr, err := request.Parse(payload)
	if err != nil {
		p.logger.Warn("invalid admission request", "error", errors.ToErrorDetail(err))
		return response.Reject(CodeBadRequest, "invalid admission request: "+err.Error())
	}
	uid = vr.Request.UID

	s, err := settings.Decode[S](vr.Settings)
	if err != nil {
		p.logger.Warn("invalid settings", "uid", uid, "error", errors.ToErrorDetail(err))
		return response.Reject(CodeBadRequest, "invalid settings: "+err.Error(), response.WithUID(uid))
	}

	logger := p.logger.With(
		"uid", uid,
		"operation", string(vr.Request.Operation),
		"kind", vr.Request.Kind.String(),
	)
	out, err := p.validate(ctx, &Request[S]{
		Admission:    &vr.Request,
		Settings:     s,
		Capabilities: p.client,
		Logger:       logger,
	})
	if err != nil {
		var ce *errors.CapabilityError
		if stdErrors.As(err, &ce) {
			logger.Error("capability call failed",
				"error", errors.ToErrorDetail(err),
				"host_rejected", errors.IsHostRejected(err),
			)
			return response.Reject(CodeInternal, "host capability failure: "+err.Error(), response.WithUID(uid))
		}
		logger.Error("policy returned an error", "error", errors.ToErrorDetail(err))
		return response.Reject(CodeInternal, "policy error: "+err.Error(), response.WithUID(uid))
	}
	if err := response.Check(out); err != nil {
		logger.Error("policy built an invalid response", "error", errors.ToErrorDetail(err))
		return response.Reject(CodeInternal, "internal error: "+err.Error(), response.WithUID(uid))
	}

	out.UID = uid
	logger.Debug("request evaluated", "allowed", out.Allowed, "mutating", out.IsMutating())
	return out
}

// Validate is the validate entry point.
func (p *Policy[S]) Validate(payload []byte) []byte {
	out, err := response.Marshal(p.Evaluate(context.Background(), payload))
	if err != nil {
		out, _ = json.Marshal(response.Reject(CodeInternal, "internal error: "+err.Error()))
	}
	return out
}

// CheckSettings runs settings validation. It never panics.
func (p *Policy[S]) CheckSettings(payload []byte) (resp entities.SettingsValidationResponse) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("settings validation panicked", "panic", fmt.Sprint(r))
			resp = response.RejectSettings(fmt.Sprintf("internal error: policy panic: %v", r))
		}
	}()

	resp = settings.Validate[S](payload)
	if !resp.Valid {
		p.logger.Info("settings rejected", "reason", resp.Message)
	}
	return resp
}

// ValidateSettings is the validate_settings entry point.
func (p *Policy[S]) ValidateSettings(payload []byte) []byte {
	out, _ := json.Marshal(p.CheckSettings(payload))
	return out
}

// ProtocolVersion is the protocol_version entry point.
func (p *Policy[S]) ProtocolVersion() []byte {
	out, _ := json.Marshal(p.version)
	return out
}

// Register installs h as the module's entry points. Call it from main or
// init in the policy module.
func Register(h Handler) {
	wasm.Register(h)
}
