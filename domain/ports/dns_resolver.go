package ports

import (
	"context"
)

// DNSResolver defines the interface for DNS resolution operations.
// The guest adapter forwards to the host net capability; the host bundle
// uses a real resolver.
type DNSResolver interface {
	// LookupHost resolves IP addresses for a given hostname.
	// Returns A and AAAA records as string slices.
	LookupHost(ctx context.Context, host string) ([]string, error)
}
