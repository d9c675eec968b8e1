package entities

import (
	"fmt"
	"log/slog"
	"slices"
)

// ErrorDetail is the structured form of an SDK error as it appears in logs.
// Kind is one of "validation", "capability", "config" or "internal".
type ErrorDetail struct {
	Details map[string]any `json:"details,omitempty"`
	Message string         `json:"message"`
	Kind    string         `json:"kind"`
	Code    string         `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Kind != "" && e.Kind != "internal" {
		msg = e.Kind + ": " + msg
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	return msg
}

// LogValue renders the detail as a group so handlers emit kind, code and
// details as separate attributes.
func (e *ErrorDetail) LogValue() slog.Value {
	if e == nil {
		return slog.StringValue("")
	}
	attrs := []slog.Attr{slog.String("kind", e.Kind), slog.String("message", e.Message)}
	if e.Code != "" {
		attrs = append(attrs, slog.String("code", e.Code))
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Details[k]))
	}
	return slog.GroupValue(attrs...)
}

// HostFault is the failure a host reports for a capability call.
// Code and Message are surfaced to the policy verbatim.
type HostFault struct {
	Message string `json:"message"`
	Code    int32  `json:"code"`
}

// Error implements the error interface.
func (f *HostFault) Error() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("host fault %d: %s", f.Code, f.Message)
}

// NewHostFault creates a HostFault.
func NewHostFault(code int32, message string) *HostFault {
	return &HostFault{Code: code, Message: message}
}
