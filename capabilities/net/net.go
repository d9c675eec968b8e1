// Package hostnet wraps the net capability family.
package hostnet

import (
	"context"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
)

// LookupHost resolves host through the host's resolver.
func LookupHost(c *capabilities.Client, host string) ([]string, error) {
	resp, err := capabilities.Invoke[entities.LookupHostRequest, entities.LookupHostResponse](c, capabilities.NetLookupHost, entities.LookupHostRequest{Host: host})
	if err != nil {
		return nil, err
	}
	return resp.IPs, nil
}

// Compile-time interface compliance check
var _ ports.DNSResolver = (*Resolver)(nil)

// Resolver adapts a capability client to ports.DNSResolver.
type Resolver struct {
	client *capabilities.Client
}

// NewResolver creates a Resolver.
func NewResolver(c *capabilities.Client) *Resolver {
	return &Resolver{client: c}
}

// LookupHost implements ports.DNSResolver. The context is not forwarded:
// the boundary offers no cancellation.
func (r *Resolver) LookupHost(_ context.Context, host string) ([]string, error) {
	return LookupHost(r.client, host)
}
