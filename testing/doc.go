// Package policytest is the harness for testing policies natively, without
// compiling them to WebAssembly.
//
// A FakeHost stands in for the policy runtime's capability side; it is a
// hostfuncs.Registry that records every call. NewRequest builds admission
// requests with fresh UIDs, SettingsFromYAML turns YAML fixtures into the
// JSON settings document, and the Assert helpers check decisions.
//
//	host := policytest.NewFakeHost(t,
//	    policytest.Respond(capabilities.NetLookupHost, entities.LookupHostResponse{IPs: []string{"10.0.0.1"}}),
//	)
//	p := policy.New(validate, policy.WithCapabilities(host.Client()))
//
//	payload := policytest.NewRequest().
//	    Kind("", "v1", "Pod").
//	    Object(pod).
//	    Settings(policytest.SettingsFromYAML(t, "allowedRegistries: [ghcr.io]")).
//	    MustJSON(t)
//
//	resp := policytest.Evaluate(t, p, payload)
//	policytest.AssertAccepted(t, resp)
package policytest
