package hostnet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	hostnet "github.com/warden-dev/policy-sdk-go/capabilities/net"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

func dnsHost(records map[string][]string) ports.HostCaller {
	return ports.HostCallerFunc(func(binding, operation string, payload []byte) ([]byte, error) {
		var req entities.LookupHostRequest
		if err := wireformat.Decode(payload, &req); err != nil {
			return nil, entities.NewHostFault(400, err.Error())
		}
		ips, ok := records[req.Host]
		if !ok {
			return nil, entities.NewHostFault(500, "no such host "+req.Host)
		}
		return wireformat.Encode(entities.LookupHostResponse{IPs: ips})
	})
}

func TestLookupHost(t *testing.T) {
	client := capabilities.NewClient(capabilities.WithHost(dnsHost(map[string][]string{
		"registry.example.com": {"192.0.2.1", "2001:db8::1"},
	})))

	ips, err := hostnet.LookupHost(client, "registry.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"192.0.2.1", "2001:db8::1"}, ips)

	_, err = hostnet.LookupHost(client, "missing.example.com")
	assert.True(t, errors.IsHostRejected(err))
	assert.ErrorContains(t, err, "no such host missing.example.com")
}

func TestResolver_ImplementsDNSResolver(t *testing.T) {
	var resolver ports.DNSResolver = hostnet.NewResolver(capabilities.NewClient(
		capabilities.WithHost(dnsHost(map[string][]string{"a.test": {"10.0.0.1"}}))))

	ips, err := resolver.LookupHost(context.Background(), "a.test")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, ips)
}
