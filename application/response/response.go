// Package response builds the replies a policy returns to the host.
//
// Builders enforce the response invariants when the value is constructed:
// an allowed response never carries a status, and a patch is only ever
// attached to an allowed response. Violations are programming errors in
// the policy and panic with *errors.ConstructionError.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/warden-dev/policy-sdk-go/application/patch"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

// Option adjusts a ValidationResponse under construction.
type Option func(*entities.ValidationResponse)

// Accept admits the request unchanged.
func Accept(opts ...Option) entities.ValidationResponse {
	return build(entities.ValidationResponse{Allowed: true}, opts)
}

// AcceptWithPatch admits the request and asks the host to apply ops, in
// order, to the object. An empty list is a plain Accept.
func AcceptWithPatch(ops []entities.PatchOperation, opts ...Option) entities.ValidationResponse {
	return build(entities.ValidationResponse{Allowed: true}, append([]Option{WithPatch(ops)}, opts...))
}

// Reject denies the request. code is the HTTP-style status shown to the
// user; 0 leaves it to the host.
func Reject(code uint16, message string, opts ...Option) entities.ValidationResponse {
	if message == "" {
		panic(&errors.ConstructionError{Reason: "a rejection requires a message"})
	}
	return build(entities.ValidationResponse{Status: &entities.Status{Code: code, Message: message}}, opts)
}

// Mutate diffs original against desired and accepts with the resulting
// patch. Identical documents produce a plain Accept.
func Mutate(original, desired any, opts ...Option) (entities.ValidationResponse, error) {
	ops, err := patch.Diff(original, desired)
	if err != nil {
		return entities.ValidationResponse{}, err
	}
	return AcceptWithPatch(ops, opts...), nil
}

// WithPatch attaches a JSON Patch. It panics on a rejected response or an
// invalid operation.
func WithPatch(ops []entities.PatchOperation) Option {
	return func(r *entities.ValidationResponse) {
		if len(ops) == 0 {
			return
		}
		if !r.Allowed {
			panic(&errors.ConstructionError{Reason: "a patch cannot be attached to a rejected response"})
		}
		for i, op := range ops {
			if err := op.Validate(); err != nil {
				panic(&errors.ConstructionError{Reason: fmt.Sprintf("patch operation %d: %v", i, err)})
			}
		}
		encoded, err := patch.Marshal(ops)
		if err != nil {
			panic(&errors.ConstructionError{Reason: fmt.Sprintf("patch cannot be encoded: %v", err)})
		}
		patchType := entities.PatchTypeJSONPatch
		r.Patch = encoded
		r.PatchType = &patchType
	}
}

// WithWarnings adds warnings shown to the API client.
func WithWarnings(warnings ...string) Option {
	return func(r *entities.ValidationResponse) {
		r.Warnings = append(r.Warnings, warnings...)
	}
}

// WithAuditAnnotations adds annotations recorded in the audit log.
func WithAuditAnnotations(annotations map[string]string) Option {
	return func(r *entities.ValidationResponse) {
		if len(annotations) == 0 {
			return
		}
		if r.AuditAnnotations == nil {
			r.AuditAnnotations = make(map[string]string, len(annotations))
		}
		for k, v := range annotations {
			r.AuditAnnotations[k] = v
		}
	}
}

// WithUID sets the uid echoed back to the host.
func WithUID(uid string) Option {
	return func(r *entities.ValidationResponse) {
		r.UID = uid
	}
}

func build(resp entities.ValidationResponse, opts []Option) entities.ValidationResponse {
	for _, opt := range opts {
		opt(&resp)
	}
	return resp
}

// Check reports whether resp satisfies the response invariants. It catches
// responses assembled as struct literals rather than through the builders.
func Check(resp entities.ValidationResponse) error {
	switch {
	case resp.Allowed && resp.Status != nil:
		return &errors.ConstructionError{Reason: "an allowed response cannot carry a status"}
	case !resp.Allowed && len(resp.Patch) > 0:
		return &errors.ConstructionError{Reason: "a patch cannot be attached to a rejected response"}
	case len(resp.Patch) > 0 && (resp.PatchType == nil || *resp.PatchType != entities.PatchTypeJSONPatch):
		return &errors.ConstructionError{Reason: "a patch requires patchType " + entities.PatchTypeJSONPatch}
	case len(resp.Patch) == 0 && resp.PatchType != nil:
		return &errors.ConstructionError{Reason: "patchType set without a patch"}
	case len(resp.Patch) > 0 && !json.Valid(resp.Patch):
		return &errors.ConstructionError{Reason: "patch is not a JSON document"}
	}
	return nil
}

// Marshal checks resp and encodes it for the host.
func Marshal(resp entities.ValidationResponse) ([]byte, error) {
	if err := Check(resp); err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// AcceptSettings reports valid settings.
func AcceptSettings() entities.SettingsValidationResponse {
	return entities.SettingsValidationResponse{Valid: true}
}

// RejectSettings reports invalid settings with a reason.
func RejectSettings(message string) entities.SettingsValidationResponse {
	if message == "" {
		panic(&errors.ConstructionError{Reason: "a settings rejection requires a message"})
	}
	return entities.SettingsValidationResponse{Valid: false, Message: message}
}
