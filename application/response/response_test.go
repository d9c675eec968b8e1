package response_test

import (
	"encoding/json"
	stdErrors "errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/application/response"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

func addLabel(value string) []entities.PatchOperation {
	return []entities.PatchOperation{{Op: entities.PatchAdd, Path: "/metadata/labels/owner", Value: value}}
}

// constructionPanic runs fn and returns the ConstructionError it panicked with.
func constructionPanic(t *testing.T, fn func()) (ce *errors.ConstructionError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		require.True(t, stdErrors.As(err, &ce), "panic should be a ConstructionError, got %v", err)
	}()
	fn()
	return nil
}

func TestAccept(t *testing.T) {
	resp := response.Accept()
	assert.True(t, resp.Allowed)
	assert.Nil(t, resp.Status)
	assert.Nil(t, resp.Patch)
	assert.Nil(t, resp.PatchType)
	assert.False(t, resp.IsMutating())

	out, err := response.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"allowed":true}`, string(out))
}

func TestAcceptWithPatch(t *testing.T) {
	resp := response.AcceptWithPatch(addLabel("team-a"))
	require.True(t, resp.Allowed)
	require.NotNil(t, resp.PatchType)
	assert.Equal(t, entities.PatchTypeJSONPatch, *resp.PatchType)
	assert.JSONEq(t, `[{"op":"add","path":"/metadata/labels/owner","value":"team-a"}]`, string(resp.Patch))
	assert.True(t, resp.IsMutating())
	require.NoError(t, response.Check(resp))
}

func TestAcceptWithPatch_EmptyIsPlainAccept(t *testing.T) {
	resp := response.AcceptWithPatch(nil)
	assert.Equal(t, response.Accept(), resp)
}

func TestAcceptWithPatch_InvalidOperationPanics(t *testing.T) {
	ce := constructionPanic(t, func() {
		response.AcceptWithPatch([]entities.PatchOperation{{Op: "merge", Path: "/a"}})
	})
	assert.Contains(t, ce.Reason, "patch operation 0")
}

func TestReject(t *testing.T) {
	resp := response.Reject(403, "privileged containers are not allowed")
	assert.False(t, resp.Allowed)
	require.NotNil(t, resp.Status)
	assert.Equal(t, uint16(403), resp.Status.Code)
	assert.Equal(t, "privileged containers are not allowed", resp.Status.Message)
	assert.Nil(t, resp.Patch)

	out, err := response.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"allowed":false,"status":{"message":"privileged containers are not allowed","code":403}}`, string(out))
}

func TestReject_ZeroCodeIsOmitted(t *testing.T) {
	out, err := response.Marshal(response.Reject(0, "denied"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"allowed":false,"status":{"message":"denied"}}`, string(out))
}

func TestReject_RequiresMessage(t *testing.T) {
	ce := constructionPanic(t, func() { response.Reject(400, "") })
	assert.Contains(t, ce.Reason, "requires a message")
}

func TestReject_WithPatchPanics(t *testing.T) {
	ce := constructionPanic(t, func() {
		response.Reject(400, "no", response.WithPatch(addLabel("x")))
	})
	assert.Contains(t, ce.Reason, "rejected response")
}

func TestOptions(t *testing.T) {
	resp := response.Accept(
		response.WithUID("705ab4f5"),
		response.WithWarnings("image uses latest tag"),
		response.WithWarnings("no resource limits"),
		response.WithAuditAnnotations(map[string]string{"policy": "tags"}),
		response.WithAuditAnnotations(map[string]string{"mode": "monitor"}),
		response.WithAuditAnnotations(nil),
	)

	assert.Equal(t, "705ab4f5", resp.UID)
	assert.Equal(t, []string{"image uses latest tag", "no resource limits"}, resp.Warnings)
	assert.Equal(t, map[string]string{"policy": "tags", "mode": "monitor"}, resp.AuditAnnotations)

	out, err := response.Marshal(resp)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "705ab4f5", decoded["uid"])
	assert.Len(t, decoded["warnings"], 2)
}

func TestMutate(t *testing.T) {
	original := map[string]any{"metadata": map[string]any{"labels": map[string]any{"team": "payments"}}}
	desired := map[string]any{"metadata": map[string]any{"labels": map[string]any{"team": "payments", "managed-by": "kubewarden"}}}

	resp, err := response.Mutate(original, desired)
	require.NoError(t, err)
	require.True(t, resp.Allowed)
	assert.Equal(t, `[{"op":"add","path":"/metadata/labels/managed-by","value":"kubewarden"}]`, string(resp.Patch))

	unchanged, err := response.Mutate(original, original)
	require.NoError(t, err)
	assert.False(t, unchanged.IsMutating())

	_, err = response.Mutate(original, func() {})
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	jsonPatch := entities.PatchTypeJSONPatch
	other := "MergePatch"

	tests := []struct {
		name    string
		resp    entities.ValidationResponse
		wantErr string
	}{
		{name: "plain accept", resp: entities.ValidationResponse{Allowed: true}},
		{name: "plain reject", resp: entities.ValidationResponse{Status: &entities.Status{Message: "no"}}},
		{
			name:    "allowed with status",
			resp:    entities.ValidationResponse{Allowed: true, Status: &entities.Status{Message: "x"}},
			wantErr: "cannot carry a status",
		},
		{
			name:    "rejected with patch",
			resp:    entities.ValidationResponse{Patch: []byte(`[]`), PatchType: &jsonPatch},
			wantErr: "rejected response",
		},
		{
			name:    "patch without type",
			resp:    entities.ValidationResponse{Allowed: true, Patch: []byte(`[]`)},
			wantErr: "requires patchType",
		},
		{
			name:    "unsupported patch type",
			resp:    entities.ValidationResponse{Allowed: true, Patch: []byte(`[]`), PatchType: &other},
			wantErr: "requires patchType",
		},
		{
			name:    "type without patch",
			resp:    entities.ValidationResponse{Allowed: true, PatchType: &jsonPatch},
			wantErr: "without a patch",
		},
		{
			name:    "patch is not json",
			resp:    entities.ValidationResponse{Allowed: true, Patch: []byte(`[{`), PatchType: &jsonPatch},
			wantErr: "not a JSON document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := response.Check(tt.resp)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ce *errors.ConstructionError
			require.ErrorAs(t, err, &ce)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, err = response.Marshal(tt.resp)
			assert.Error(t, err)
		})
	}
}

func TestSettingsResponses(t *testing.T) {
	ok := response.AcceptSettings()
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Message)

	bad := response.RejectSettings("allowedRegistries must not be empty")
	assert.False(t, bad.Valid)
	assert.Equal(t, "allowedRegistries must not be empty", bad.Message)

	constructionPanic(t, func() { response.RejectSettings("") })
}

func TestResponseInvariantsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("a patched response is always allowed and well formed", prop.ForAll(
		func(values []string) bool {
			ops := make([]entities.PatchOperation, 0, len(values))
			for _, v := range values {
				ops = append(ops, entities.PatchOperation{Op: entities.PatchAdd, Path: "/items/-", Value: v})
			}
			resp := response.AcceptWithPatch(ops)
			return resp.Allowed && resp.Status == nil && response.Check(resp) == nil &&
				resp.IsMutating() == (len(ops) > 0)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("a rejection never carries a patch", prop.ForAll(
		func(code uint16, message string) bool {
			resp := response.Reject(code, "denied: "+message)
			return !resp.Allowed && resp.Patch == nil && resp.PatchType == nil &&
				resp.Status != nil && resp.Status.Code == code && response.Check(resp) == nil
		},
		gen.UInt16(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
