package policytest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/application/policy"
	"github.com/warden-dev/policy-sdk-go/application/request"
	"github.com/warden-dev/policy-sdk-go/application/response"
	"github.com/warden-dev/policy-sdk-go/capabilities"
	hostnet "github.com/warden-dev/policy-sdk-go/capabilities/net"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/hostfuncs"
	policytest "github.com/warden-dev/policy-sdk-go/testing"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type ingressSettings struct {
	DeniedHosts []string `json:"deniedHosts" jsonschema:"required" validate:"min=1"`
}

type ingress struct {
	Metadata struct {
		Labels map[string]string `json:"labels,omitempty"`
	} `json:"metadata"`
	Host string `json:"host"`
}

// denyResolvingHosts rejects ingresses whose host resolves to a denied
// address, and labels the rest.
func denyResolvingHosts(_ context.Context, req *policy.Request[ingressSettings]) (entities.ValidationResponse, error) {
	var obj ingress
	if err := req.Admission.ObjectAs(&obj); err != nil {
		return entities.ValidationResponse{}, err
	}
	ips, err := hostnet.LookupHost(req.Capabilities, obj.Host)
	if err != nil {
		return entities.ValidationResponse{}, err
	}
	for _, ip := range ips {
		for _, denied := range req.Settings.DeniedHosts {
			if ip == denied {
				return response.Reject(403, "host "+obj.Host+" resolves to denied address "+ip), nil
			}
		}
	}

	var doc map[string]any
	if err := req.Admission.ObjectAs(&doc); err != nil {
		return entities.ValidationResponse{}, err
	}
	meta, _ := doc["metadata"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
		doc["metadata"] = meta
	}
	meta["labels"] = map[string]any{"resolved": "true"}
	return req.Mutate(doc, response.WithWarnings("labelled"))
}

func newIngressPolicy(host *policytest.FakeHost) *policy.Policy[ingressSettings] {
	return policy.New(denyResolvingHosts,
		policy.WithCapabilities(host.Client(capabilities.WithLogger(discard))),
		policy.WithLogger(discard),
	)
}

func TestPolicy_EndToEnd(t *testing.T) {
	host := policytest.NewFakeHost(t,
		policytest.Respond(capabilities.NetLookupHost, entities.LookupHostResponse{IPs: []string{"10.0.0.9"}}),
	)
	p := newIngressPolicy(host)
	settings := policytest.SettingsFromYAML(t, `
deniedHosts:
  - 10.0.0.9
`)

	t.Run("rejected", func(t *testing.T) {
		payload := policytest.NewRequest().
			Kind("networking.k8s.io", "v1", "Ingress").
			Object(map[string]any{"host": "internal.example"}).
			Settings(settings).
			MustJSON(t)

		resp := policytest.Evaluate(t, p, payload)
		policytest.AssertRejected(t, resp, 403, "resolves to denied address 10.0.0.9")
		assert.Equal(t, 1, host.CallCount(capabilities.NetLookupHost))
	})

	t.Run("mutated", func(t *testing.T) {
		host.Reset()
		object := map[string]any{"host": "public.example", "metadata": map[string]any{}}
		payload := policytest.NewRequest().
			Object(object).
			Settings(policytest.SettingsFromYAML(t, "deniedHosts: [192.0.2.1]")).
			MustJSON(t)

		resp := policytest.Evaluate(t, p, payload)
		policytest.AssertMutated(t, resp, object, `{"host":"public.example","metadata":{"labels":{"resolved":"true"}}}`)
		assert.Equal(t, []string{"labelled"}, resp.Warnings)

		calls := host.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, capabilities.NetLookupHost, calls[0].Operation)
	})
}

func TestPolicy_HostFailure(t *testing.T) {
	host := policytest.NewFakeHost(t, policytest.Fail(capabilities.NetLookupHost, 404, "no such host"))
	p := newIngressPolicy(host)

	payload := policytest.NewRequest().
		UID("req-1").
		Object(`{"host":"missing.example"}`).
		Settings(`{"deniedHosts":["x"]}`).
		MustJSON(t)

	resp := policytest.Evaluate(t, p, payload)
	policytest.AssertRejected(t, resp, 500, "host capability failure")
	assert.Contains(t, resp.Status.Message, "(code 404): no such host")
	assert.Equal(t, "req-1", resp.UID)
}

func TestPolicy_UnregisteredCapability(t *testing.T) {
	host := policytest.NewFakeHost(t)
	p := newIngressPolicy(host)

	payload := policytest.NewRequest().Object(`{"host":"a"}`).MustJSON(t)
	resp := policytest.Evaluate(t, p, payload)
	policytest.AssertRejected(t, resp, 500, "capability not registered: net/lookup_host")
	assert.Empty(t, host.Calls())
}

func TestFakeHost_Faults(t *testing.T) {
	host := policytest.NewFakeHost(t,
		policytest.Respond(capabilities.OCIManifestDigest, entities.ManifestDigestResponse{Digest: "sha256:1"}),
	)
	_, err := host.HostCall("oci", "manifest_digest", nil)
	require.Error(t, err, "an empty payload is not a CBOR request")

	panicking := policytest.NewFakeHost(t,
		hostfuncs.WithByteHandler(capabilities.NetLookupHost, func(context.Context, []byte) ([]byte, error) {
			panic("kaboom")
		}))
	_, err = hostnet.LookupHost(panicking.Client(capabilities.WithLogger(discard)), "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: kaboom")
}

func TestSettings(t *testing.T) {
	p := newIngressPolicy(policytest.NewFakeHost(t))

	policytest.AssertSettingsValid(t, policytest.CheckSettings(t, p, policytest.SettingsFromYAML(t, "deniedHosts: [a]")))
	policytest.AssertSettingsInvalid(t,
		policytest.CheckSettings(t, p, policytest.SettingsFromYAML(t, "deniedHosts: []")),
		"deniedHosts")
}

func TestSettingsFromYAML(t *testing.T) {
	raw := policytest.SettingsFromYAML(t, `
name: demo
replicas: 3
ratio: 0.5
enabled: true
nested:
  1: one
  list: [a, b]
`)
	assert.JSONEq(t, `{"name":"demo","replicas":3,"ratio":0.5,"enabled":true,"nested":{"1":"one","list":["a","b"]}}`, string(raw))

	empty, err := policytest.ParseSettingsYAML(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(empty))

	_, err = policytest.ParseSettingsYAML([]byte("a: [unterminated"))
	assert.Error(t, err)
}

func TestSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deniedHosts:\n  - 10.1.1.1\n"), 0o600))

	assert.JSONEq(t, `{"deniedHosts":["10.1.1.1"]}`, string(policytest.SettingsFromFile(t, path)))
}

func TestNewRequest(t *testing.T) {
	b := policytest.NewRequest().
		Operation(entities.OperationUpdate).
		Kind("apps", "v1", "Deployment").
		Namespace("prod").
		Name("web").
		User("alice", "devs").
		DryRun().
		Object(map[string]any{"spec": map[string]any{"replicas": 2}}).
		OldObject(json.RawMessage(`{"spec":{"replicas":1}}`))

	vr, err := b.Build()
	require.NoError(t, err)
	_, err = uuid.Parse(vr.Request.UID)
	assert.NoError(t, err)
	assert.Equal(t, "deployments", vr.Request.Resource.Resource)
	assert.True(t, vr.Request.IsDryRun())

	parsed, err := request.Parse(b.MustJSON(t))
	require.NoError(t, err)
	assert.Equal(t, entities.OperationUpdate, parsed.Request.Operation)
	assert.Equal(t, "apps/v1/Deployment", parsed.Request.Kind.String())
	assert.Equal(t, "prod", parsed.Request.Namespace)
	assert.Equal(t, []string{"devs"}, parsed.Request.UserInfo.Groups)
	assert.JSONEq(t, `{"spec":{"replicas":1}}`, string(parsed.Request.OldObject))
	assert.True(t, parsed.Settings.IsEmpty())

	assert.NotEqual(t, vr.Request.UID, mustUID(t, policytest.NewRequest()))
}

func TestNewRequest_EncodingError(t *testing.T) {
	_, err := policytest.NewRequest().Object(map[string]any{"ch": make(chan int)}).JSON()
	assert.Error(t, err)
}

func TestNewRequest_Plurals(t *testing.T) {
	for kind, want := range map[string]string{"Pod": "pods", "NetworkPolicy": "networkpolicies", "Ingress": "ingresses"} {
		vr, err := policytest.NewRequest().Kind("", "v1", kind).Build()
		require.NoError(t, err)
		assert.Equal(t, want, vr.Request.Resource.Resource)
	}
}

func mustUID(t *testing.T, b *policytest.RequestBuilder) string {
	t.Helper()
	vr, err := b.Build()
	require.NoError(t, err)
	return vr.Request.UID
}
