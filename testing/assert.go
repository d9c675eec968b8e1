package policytest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/application/patch"
	"github.com/warden-dev/policy-sdk-go/application/policy"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// Evaluate calls h.Validate and decodes the reply, exercising the same
// JSON path the wasm export uses.
func Evaluate(t testing.TB, h policy.Handler, payload []byte) entities.ValidationResponse {
	t.Helper()
	var resp entities.ValidationResponse
	require.NoError(t, wireformat.JSON.Unmarshal(h.Validate(payload), &resp), "decode validation response")
	return resp
}

// CheckSettings calls h.ValidateSettings and decodes the reply.
func CheckSettings(t testing.TB, h policy.Handler, settings []byte) entities.SettingsValidationResponse {
	t.Helper()
	var resp entities.SettingsValidationResponse
	require.NoError(t, wireformat.JSON.Unmarshal(h.ValidateSettings(settings), &resp), "decode settings response")
	return resp
}

// AssertAccepted checks an allowed response without a patch.
func AssertAccepted(t testing.TB, resp entities.ValidationResponse) bool {
	t.Helper()
	ok := assert.True(t, resp.Allowed, "expected request to be accepted, status: %+v", resp.Status)
	return assert.Empty(t, resp.Patch, "expected no patch") && ok
}

// AssertRejected checks a rejection with code (0 to skip) and a message
// containing msgSubstring.
func AssertRejected(t testing.TB, resp entities.ValidationResponse, code uint16, msgSubstring string) bool {
	t.Helper()
	if !assert.False(t, resp.Allowed, "expected request to be rejected") {
		return false
	}
	if !assert.NotNil(t, resp.Status, "rejection without status") {
		return false
	}
	ok := true
	if code != 0 {
		ok = assert.Equal(t, code, resp.Status.Code, "rejection code")
	}
	return assert.Contains(t, resp.Status.Message, msgSubstring) && ok
}

// AssertMutated checks that resp is allowed and that its patch turns
// original into want.
func AssertMutated(t testing.TB, resp entities.ValidationResponse, original any, want string) bool {
	t.Helper()
	if !assert.True(t, resp.Allowed, "expected request to be accepted") {
		return false
	}
	if !assert.NotEmpty(t, resp.Patch, "expected a patch") {
		return false
	}
	if !assert.NotNil(t, resp.PatchType) || !assert.Equal(t, entities.PatchTypeJSONPatch, *resp.PatchType) {
		return false
	}

	doc, err := documentBytes(original)
	require.NoError(t, err, "encode original object")
	patched, err := patch.ApplyRaw(doc, resp.Patch)
	if !assert.NoError(t, err, "apply patch %s", resp.Patch) {
		return false
	}
	return assert.JSONEq(t, want, string(patched))
}

// AssertSettingsValid checks an accepted settings document.
func AssertSettingsValid(t testing.TB, resp entities.SettingsValidationResponse) bool {
	t.Helper()
	return assert.True(t, resp.Valid, "expected valid settings, got: %s", resp.Message)
}

// AssertSettingsInvalid checks a rejected settings document whose message
// contains msgSubstring.
func AssertSettingsInvalid(t testing.TB, resp entities.SettingsValidationResponse, msgSubstring string) bool {
	t.Helper()
	ok := assert.False(t, resp.Valid, "expected invalid settings")
	return assert.Contains(t, resp.Message, msgSubstring) && ok
}

func documentBytes(v any) ([]byte, error) {
	switch doc := v.(type) {
	case entities.Document:
		return doc, nil
	case json.RawMessage:
		return doc, nil
	case []byte:
		return doc, nil
	case string:
		return []byte(doc), nil
	}
	return wireformat.JSON.Marshal(v)
}
