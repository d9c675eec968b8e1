package hostfuncs

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

type fakeResolver struct {
	hosts map[string][]string
	err   error
}

func (f fakeResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		panic("lookup without deadline")
	}
	ips, ok := f.hosts[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return ips, nil
}

func TestLookupHost(t *testing.T) {
	resolver := fakeResolver{hosts: map[string][]string{"registry.local": {"10.0.0.7", "fd00::7"}}}

	tests := []struct {
		name     string
		host     string
		wantIPs  []string
		wantCode int32
	}{
		{name: "resolved", host: "registry.local", wantIPs: []string{"10.0.0.7", "fd00::7"}},
		{name: "empty host", host: "  ", wantCode: 400},
		{name: "unknown host", host: "nowhere.invalid", wantCode: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := LookupHost(context.Background(), entities.LookupHostRequest{Host: tt.host}, WithDNSResolver(resolver))
			if tt.wantCode != 0 {
				var fault *entities.HostFault
				require.ErrorAs(t, err, &fault)
				assert.Equal(t, tt.wantCode, fault.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIPs, resp.IPs)
		})
	}
}

func TestLookupHost_ResolverFailure(t *testing.T) {
	resolver := fakeResolver{err: &net.DNSError{Err: "server misbehaving", Name: "x", IsTemporary: true}}

	_, err := LookupHost(context.Background(), entities.LookupHostRequest{Host: "x"},
		WithDNSResolver(resolver), WithDNSLookupTimeout(time.Second))

	var fault *entities.HostFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, int32(500), fault.Code)
	assert.Contains(t, fault.Message, "lookup failed")
}

func TestNetBundle(t *testing.T) {
	reg, err := NewRegistry(WithBundle(NetBundle(WithDNSResolver(fakeResolver{hosts: map[string][]string{"a": {"192.0.2.1"}}}))))
	require.NoError(t, err)
	assert.Equal(t, []capabilities.Operation{capabilities.NetLookupHost}, reg.Operations())

	payload, err := wireformat.Encode(entities.LookupHostRequest{Host: "a"})
	require.NoError(t, err)

	reply := reg.Invoke(context.Background(), capabilities.NetLookupHost, payload)
	require.False(t, reply.Failed())

	var resp entities.LookupHostResponse
	require.NoError(t, wireformat.Decode(reply.Payload, &resp))
	assert.Equal(t, []string{"192.0.2.1"}, resp.IPs)
}
