package hostfuncs

import (
	"context"
	stdErrors "errors"
	"net"
	"strings"
	"time"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
)

// DNSOption configures the lookup_host handler.
type DNSOption func(*dnsConfig)

type dnsConfig struct {
	resolver   ports.DNSResolver
	nameserver string
	timeout    time.Duration
}

func defaultDNSConfig() dnsConfig {
	return dnsConfig{
		timeout: 5 * time.Second,
	}
}

// WithDNSLookupTimeout sets the per-lookup timeout.
func WithDNSLookupTimeout(d time.Duration) DNSOption {
	return func(c *dnsConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDNSNameserver queries ns ("host" or "host:port") instead of the
// system resolver.
func WithDNSNameserver(ns string) DNSOption {
	return func(c *dnsConfig) {
		c.nameserver = ns
	}
}

// WithDNSResolver replaces the resolver entirely.
func WithDNSResolver(r ports.DNSResolver) DNSOption {
	return func(c *dnsConfig) {
		c.resolver = r
	}
}

// systemResolver adapts net.Resolver to ports.DNSResolver.
type systemResolver struct {
	resolver *net.Resolver
}

func (s systemResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return s.resolver.LookupHost(ctx, host)
}

func newSystemResolver(cfg dnsConfig) ports.DNSResolver {
	resolver := &net.Resolver{PreferGo: true}
	if cfg.nameserver != "" {
		ns := cfg.nameserver
		if !strings.Contains(ns, ":") {
			ns += ":53"
		}
		resolver.Dial = func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: cfg.timeout}
			return d.DialContext(ctx, network, ns)
		}
	}
	return systemResolver{resolver: resolver}
}

// LookupHost serves net/lookup_host.
func LookupHost(ctx context.Context, req entities.LookupHostRequest, opts ...DNSOption) (entities.LookupHostResponse, error) {
	cfg := defaultDNSConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return lookupHost(ctx, cfg, resolverFor(cfg), req)
}

func resolverFor(cfg dnsConfig) ports.DNSResolver {
	if cfg.resolver != nil {
		return cfg.resolver
	}
	return newSystemResolver(cfg)
}

func lookupHost(ctx context.Context, cfg dnsConfig, resolver ports.DNSResolver, req entities.LookupHostRequest) (entities.LookupHostResponse, error) {
	if strings.TrimSpace(req.Host) == "" {
		return entities.LookupHostResponse{}, BadRequest("host is required")
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	ips, err := resolver.LookupHost(ctx, req.Host)
	if err != nil {
		var dnsErr *net.DNSError
		if stdErrors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return entities.LookupHostResponse{}, NotFound("host %s not found", req.Host)
		}
		return entities.LookupHostResponse{}, Internal("lookup failed: " + err.Error())
	}
	return entities.LookupHostResponse{IPs: ips}, nil
}

// NetBundle serves the net family.
func NetBundle(opts ...DNSOption) Bundle {
	cfg := defaultDNSConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	resolver := resolverFor(cfg)

	return &staticBundle{
		handlers: map[capabilities.Operation]ByteHandler{
			capabilities.NetLookupHost: NewCBORHandler(func(ctx context.Context, req entities.LookupHostRequest) (entities.LookupHostResponse, error) {
				return lookupHost(ctx, cfg, resolver, req)
			}),
		},
	}
}
