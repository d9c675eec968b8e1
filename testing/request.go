package policytest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// RequestBuilder assembles a ValidationRequest. Encoding failures are
// kept and reported by Build.
type RequestBuilder struct {
	err error
	req entities.ValidationRequest
}

// NewRequest starts a CREATE request with a random UID.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{req: entities.ValidationRequest{
		Request: entities.AdmissionRequest{
			UID:       uuid.NewString(),
			Operation: entities.OperationCreate,
			UserInfo:  entities.UserInfo{Username: "policytest"},
		},
	}}
}

// UID overrides the generated UID.
func (b *RequestBuilder) UID(uid string) *RequestBuilder {
	b.req.Request.UID = uid
	return b
}

// Operation sets the admission operation.
func (b *RequestBuilder) Operation(op entities.Operation) *RequestBuilder {
	b.req.Request.Operation = op
	return b
}

// Kind sets kind and requestKind. The resource is derived by lowercasing
// the kind and appending "s".
func (b *RequestBuilder) Kind(group, version, kind string) *RequestBuilder {
	gvk := entities.GroupVersionKind{Group: group, Version: version, Kind: kind}
	b.req.Request.Kind = gvk
	b.req.Request.RequestKind = &gvk
	b.req.Request.Resource = entities.GroupVersionResource{Group: group, Version: version, Resource: pluralize(kind)}
	return b
}

// Namespace sets the namespace.
func (b *RequestBuilder) Namespace(ns string) *RequestBuilder {
	b.req.Request.Namespace = ns
	return b
}

// Name sets the object name.
func (b *RequestBuilder) Name(name string) *RequestBuilder {
	b.req.Request.Name = name
	return b
}

// User sets the requesting user.
func (b *RequestBuilder) User(username string, groups ...string) *RequestBuilder {
	b.req.Request.UserInfo = entities.UserInfo{Username: username, Groups: groups}
	return b
}

// DryRun marks the request as a dry run.
func (b *RequestBuilder) DryRun() *RequestBuilder {
	dry := true
	b.req.Request.DryRun = &dry
	return b
}

// Object sets the object under admission.
func (b *RequestBuilder) Object(v any) *RequestBuilder {
	b.req.Request.Object = b.document(v)
	return b
}

// OldObject sets the previous object for UPDATE and DELETE.
func (b *RequestBuilder) OldObject(v any) *RequestBuilder {
	b.req.Request.OldObject = b.document(v)
	return b
}

// Settings sets the settings document.
func (b *RequestBuilder) Settings(v any) *RequestBuilder {
	b.req.Settings = b.document(v)
	return b
}

func (b *RequestBuilder) document(v any) entities.Document {
	switch doc := v.(type) {
	case nil:
		return nil
	case entities.Document:
		return doc
	case json.RawMessage:
		return entities.Document(doc)
	case []byte:
		return entities.Document(doc)
	case string:
		return entities.Document(doc)
	}
	raw, err := wireformat.JSON.Marshal(v)
	if err != nil && b.err == nil {
		b.err = err
	}
	return entities.Document(raw)
}

// Build returns the request, or the first encoding error.
func (b *RequestBuilder) Build() (entities.ValidationRequest, error) {
	return b.req, b.err
}

// JSON encodes the request as a host would send it to validate.
func (b *RequestBuilder) JSON() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return wireformat.JSON.Marshal(b.req)
}

// MustJSON is JSON that fails the test on error.
func (b *RequestBuilder) MustJSON(t testing.TB) []byte {
	t.Helper()
	raw, err := b.JSON()
	require.NoError(t, err, "encode validation request")
	return raw
}

func pluralize(kind string) string {
	s := strings.ToLower(kind)
	switch {
	case s == "":
		return ""
	case strings.HasSuffix(s, "y"):
		return strings.TrimSuffix(s, "y") + "ies"
	case strings.HasSuffix(s, "s"):
		return s + "es"
	}
	return s + "s"
}
