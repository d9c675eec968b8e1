package entities

// Kubernetes capability payloads.

// ListAllResourcesRequest lists resources of one kind across the cluster.
type ListAllResourcesRequest struct {
	APIVersion    string `json:"api_version"`
	Kind          string `json:"kind"`
	LabelSelector string `json:"label_selector,omitempty"`
	FieldSelector string `json:"field_selector,omitempty"`
}

// ListResourcesByNamespaceRequest lists resources of one kind in a namespace.
type ListResourcesByNamespaceRequest struct {
	APIVersion    string `json:"api_version"`
	Kind          string `json:"kind"`
	Namespace     string `json:"namespace"`
	LabelSelector string `json:"label_selector,omitempty"`
	FieldSelector string `json:"field_selector,omitempty"`
}

// GetResourceRequest fetches a single resource by name.
type GetResourceRequest struct {
	APIVersion   string `json:"api_version"`
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	Namespace    string `json:"namespace,omitempty"`
	DisableCache bool   `json:"disable_cache,omitempty"`
}

// ResourceList is the result of a list call. Items are raw JSON objects.
type ResourceList struct {
	APIVersion string     `json:"api_version,omitempty"`
	Kind       string     `json:"kind,omitempty"`
	Items      []Document `json:"items"`
}

// Resource wraps a single raw JSON object.
type Resource struct {
	Object Document `json:"object"`
}

// SubjectAccessReview describes the access being checked by CanI.
type SubjectAccessReview struct {
	Groups    []string `json:"groups,omitempty"`
	User      string   `json:"user"`
	Namespace string   `json:"namespace,omitempty"`
	Verb      string   `json:"verb"`
	Group     string   `json:"group,omitempty"`
	Resource  string   `json:"resource"`
	Name      string   `json:"name,omitempty"`
}

// CanIRequest asks whether a subject may perform an action.
type CanIRequest struct {
	SubjectAccessReview SubjectAccessReview `json:"subject_access_review"`
	DisableCache        bool                `json:"disable_cache,omitempty"`
}

// CanIResponse is the host's access decision.
type CanIResponse struct {
	Reason          string `json:"reason,omitempty"`
	EvaluationError string `json:"evaluation_error,omitempty"`
	Allowed         bool   `json:"allowed"`
	Denied          bool   `json:"denied,omitempty"`
}

// Crypto capability payloads.

// CertificateEncoding names the encoding of Certificate.Data.
type CertificateEncoding string

const (
	CertificateEncodingPEM CertificateEncoding = "pem"
	CertificateEncodingDER CertificateEncoding = "der"
)

// Certificate is an encoded X.509 certificate.
type Certificate struct {
	Encoding CertificateEncoding `json:"encoding"`
	Data     []byte              `json:"data"`
}

// CertificateVerificationRequest asks the host to verify a certificate
// against an optional chain. NotAfter, when set, is an RFC 3339 timestamp
// the certificate must still be valid at.
type CertificateVerificationRequest struct {
	NotAfter  *string       `json:"not_after,omitempty"`
	Cert      Certificate   `json:"cert"`
	CertChain []Certificate `json:"cert_chain,omitempty"`
}

// CertificateVerificationResponse reports whether the certificate is trusted.
type CertificateVerificationResponse struct {
	Reason  string `json:"reason,omitempty"`
	Trusted bool   `json:"trusted"`
}

// Net capability payloads.

// LookupHostRequest resolves a hostname.
type LookupHostRequest struct {
	Host string `json:"host"`
}

// LookupHostResponse lists the resolved addresses.
type LookupHostResponse struct {
	IPs []string `json:"ips"`
}

// OCI capability payloads.

// ManifestDigestRequest resolves an image reference to its manifest digest.
type ManifestDigestRequest struct {
	Image string `json:"image"`
}

// ManifestDigestResponse carries the resolved digest.
type ManifestDigestResponse struct {
	Digest string `json:"digest"`
}

// VerifyPublicKeysRequest verifies image signatures against public keys.
type VerifyPublicKeysRequest struct {
	Annotations map[string]string `json:"annotations,omitempty"`
	Image       string            `json:"image"`
	PubKeys     []string          `json:"pub_keys"`
}

// VerificationResponse is the outcome of a signature verification.
type VerificationResponse struct {
	Digest    string `json:"digest,omitempty"`
	IsTrusted bool   `json:"is_trusted"`
}
