package hostfuncs

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// CryptoOption configures the crypto handlers.
type CryptoOption func(*cryptoConfig)

type cryptoConfig struct {
	roots *x509.CertPool
	now   func() time.Time
}

// WithRoots sets the trust anchors. Defaults to the system pool.
func WithRoots(roots *x509.CertPool) CryptoOption {
	return func(c *cryptoConfig) {
		c.roots = roots
	}
}

// WithClock sets the verification time source.
func WithClock(now func() time.Time) CryptoOption {
	return func(c *cryptoConfig) {
		c.now = now
	}
}

func parseCertificate(c entities.Certificate) (*x509.Certificate, error) {
	der := c.Data
	switch c.Encoding {
	case entities.CertificateEncodingPEM:
		block, _ := pem.Decode(c.Data)
		if block == nil || block.Type != "CERTIFICATE" {
			return nil, fmt.Errorf("no PEM certificate block found")
		}
		der = block.Bytes
	case entities.CertificateEncodingDER:
	default:
		return nil, fmt.Errorf("unknown certificate encoding %q", c.Encoding)
	}
	return x509.ParseCertificate(der)
}

// VerifyCertificate serves crypto/verify_certificate. Malformed input is a
// bad request; a certificate that does not verify is an untrusted answer,
// not a fault.
func VerifyCertificate(_ context.Context, req entities.CertificateVerificationRequest, opts ...CryptoOption) (entities.CertificateVerificationResponse, error) {
	cfg := cryptoConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	cert, err := parseCertificate(req.Cert)
	if err != nil {
		return entities.CertificateVerificationResponse{}, BadRequest("invalid certificate: %v", err)
	}

	intermediates := x509.NewCertPool()
	for i, c := range req.CertChain {
		chainCert, err := parseCertificate(c)
		if err != nil {
			return entities.CertificateVerificationResponse{}, BadRequest("invalid certificate %d in chain: %v", i, err)
		}
		intermediates.AddCert(chainCert)
	}

	var notAfter time.Time
	if req.NotAfter != nil {
		notAfter, err = time.Parse(time.RFC3339, *req.NotAfter)
		if err != nil {
			return entities.CertificateVerificationResponse{}, BadRequest("invalid not_after: %v", err)
		}
	}

	roots := cfg.roots
	if roots == nil {
		if roots, err = x509.SystemCertPool(); err != nil {
			return entities.CertificateVerificationResponse{}, Internal("system roots unavailable: " + err.Error())
		}
	}

	_, err = cert.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   cfg.now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		return entities.CertificateVerificationResponse{Reason: err.Error()}, nil
	}
	if !notAfter.IsZero() && cert.NotAfter.Before(notAfter) {
		return entities.CertificateVerificationResponse{
			Reason: fmt.Sprintf("certificate expires at %s, before %s", cert.NotAfter.UTC().Format(time.RFC3339), notAfter.UTC().Format(time.RFC3339)),
		}, nil
	}
	return entities.CertificateVerificationResponse{Trusted: true}, nil
}

// CryptoBundle serves the crypto family.
func CryptoBundle(opts ...CryptoOption) Bundle {
	return &staticBundle{
		handlers: map[capabilities.Operation]ByteHandler{
			capabilities.CryptoVerifyCertificate: NewCBORHandler(func(ctx context.Context, req entities.CertificateVerificationRequest) (entities.CertificateVerificationResponse, error) {
				return VerifyCertificate(ctx, req, opts...)
			}),
		},
	}
}
