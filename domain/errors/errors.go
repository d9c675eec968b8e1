// Package errors provides domain-specific error types for the SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// HostFault is an alias to entities.HostFault, the failure record a host
// returns for a capability call.
type HostFault = entities.HostFault

// Fault codes used by hosts when a capability call cannot be served.
const (
	FaultBadRequest int32 = 400
	FaultDenied     int32 = 403
	FaultNotFound   int32 = 404
	FaultInternal   int32 = 500
)

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts err for structured logging. SDK error types describe
// themselves; a HostFault becomes a capability detail; anything else is
// internal.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	var hf *entities.HostFault
	if stdErrors.As(err, &hf) {
		return &entities.ErrorDetail{
			Message: hf.Message,
			Kind:    "capability",
			Code:    fmt.Sprintf("host_%d", hf.Code),
			Details: map[string]any{"host_code": hf.Code},
		}
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Kind:    "internal",
	}
}

// ParseErrorKind classifies a failure to parse an admission request.
type ParseErrorKind string

const (
	// ParseMissingField means a required field is absent or null.
	ParseMissingField ParseErrorKind = "missing_field"
	// ParseInvalidField means a field is present but holds an unsupported value.
	ParseInvalidField ParseErrorKind = "invalid_field"
	// ParseMalformed means the document itself could not be decoded.
	ParseMalformed ParseErrorKind = "malformed"
)

// ParseError represents malformed or incomplete input supplied by the host.
type ParseError struct {
	Err   error
	Kind  ParseErrorKind
	Field string
}

// MissingField returns a ParseError for an absent required field.
func MissingField(field string) *ParseError {
	return &ParseError{Kind: ParseMissingField, Field: field}
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case ParseInvalidField:
		return fmt.Sprintf("invalid value for field %q: %v", e.Field, e.Err)
	default:
		if e.Field != "" {
			return fmt.Sprintf("malformed %s: %v", e.Field, e.Err)
		}
		return fmt.Sprintf("malformed document: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ParseError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: "validation", Code: "parse_" + string(e.Kind)}
}

// DecodeErrorKind classifies an envelope decoding failure.
type DecodeErrorKind string

const (
	// DecodeTypeMismatch means the encoded tag does not match the expected Go type.
	DecodeTypeMismatch DecodeErrorKind = "type_mismatch"
	// DecodeMalformed means the payload is not a valid encoding at all.
	DecodeMalformed DecodeErrorKind = "malformed"
)

// DecodeError represents a failure to decode an envelope payload.
type DecodeError struct {
	Err    error
	Kind   DecodeErrorKind
	Codec  string
	Target string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode into %s failed (%s): %v", e.Codec, e.Target, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *DecodeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: "internal", Code: "decode_" + string(e.Kind)}
}

// CapabilityErrorKind classifies a failed capability call.
type CapabilityErrorKind string

const (
	// CapabilityHostRejected means the host refused or failed to serve the call.
	CapabilityHostRejected CapabilityErrorKind = "host_rejected"
	// CapabilityMalformedResponse means the host answered with a payload that does
	// not decode into the expected response type.
	CapabilityMalformedResponse CapabilityErrorKind = "malformed_response"
	// CapabilityMalformedRequest means the request could not be encoded and the
	// call was never issued.
	CapabilityMalformedRequest CapabilityErrorKind = "malformed_request"
)

// CapabilityError represents a failed call to a host capability.
type CapabilityError struct {
	Err       error
	Kind      CapabilityErrorKind
	Binding   string
	Operation string
	Message   string
	Code      int32
}

func (e *CapabilityError) Error() string {
	switch e.Kind {
	case CapabilityHostRejected:
		return fmt.Sprintf("capability %s/%s rejected by host (code %d): %s", e.Binding, e.Operation, e.Code, e.Message)
	case CapabilityMalformedRequest:
		return fmt.Sprintf("capability %s/%s request could not be encoded: %v", e.Binding, e.Operation, e.Err)
	default:
		return fmt.Sprintf("capability %s/%s returned a malformed response: %v", e.Binding, e.Operation, e.Err)
	}
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *CapabilityError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{
		Message: e.Error(),
		Kind:    "capability",
		Code:    e.Binding + "/" + e.Operation,
	}
	if e.Kind == CapabilityHostRejected {
		detail.Details = map[string]any{"host_code": e.Code}
	}
	return detail
}

// IsHostRejected reports whether err wraps a host rejection.
func IsHostRejected(err error) bool {
	var ce *CapabilityError
	return stdErrors.As(err, &ce) && ce.Kind == CapabilityHostRejected
}

// ConstructionError signals a response built in violation of its invariants.
// It indicates a bug in policy logic and is raised with panic.
type ConstructionError struct {
	Reason string
}

func (e *ConstructionError) Error() string {
	return "invalid response construction: " + e.Reason
}

// ToErrorDetail implements DetailedError.
func (e *ConstructionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: "internal", Code: "construction"}
}

// SettingsError represents a settings document that failed validation.
type SettingsError struct {
	Err   error
	Field string
}

func (e *SettingsError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("settings validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("settings validation failed: %v", e.Err)
}

func (e *SettingsError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SettingsError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: "config", Code: e.Field}
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: "validation", Code: "schema"}
}

// MemoryError represents a memory allocation failure.
type MemoryError struct {
	Requested int // Requested allocation size
	Current   int // Current total allocated
	Limit     int // Maximum allowed
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory allocation failed: requested %d bytes, current %d bytes, limit %d bytes",
		e.Requested, e.Current, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: "internal", Code: "memory_limit"}
}
