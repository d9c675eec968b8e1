// Package hostcrypto wraps the crypto capability family.
package hostcrypto

import (
	"time"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// VerifyCertificate asks the host to verify a certificate chain.
func VerifyCertificate(c *capabilities.Client, req entities.CertificateVerificationRequest) (*entities.CertificateVerificationResponse, error) {
	resp, err := capabilities.Invoke[entities.CertificateVerificationRequest, entities.CertificateVerificationResponse](c, capabilities.CryptoVerifyCertificate, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PEMRequest builds a verification request for PEM encoded certificates.
// A zero notAfter leaves the expiry check to the host's clock.
func PEMRequest(cert []byte, chain [][]byte, notAfter time.Time) entities.CertificateVerificationRequest {
	req := entities.CertificateVerificationRequest{
		Cert: entities.Certificate{Encoding: entities.CertificateEncodingPEM, Data: cert},
	}
	for _, c := range chain {
		req.CertChain = append(req.CertChain, entities.Certificate{Encoding: entities.CertificateEncodingPEM, Data: c})
	}
	if !notAfter.IsZero() {
		ts := notAfter.UTC().Format(time.RFC3339)
		req.NotAfter = &ts
	}
	return req
}
