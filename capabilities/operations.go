// Package capabilities is the guest-side client for privileged operations
// the host exposes across the sandbox boundary.
//
// Operations form a closed set: each (binding, operation) pair is a
// package-level value with a typed request/response pair documented on it,
// and values cannot be forged outside this package.
package capabilities

// Binding names of the capability families.
const (
	BindingKubernetes = "kubernetes"
	BindingCrypto     = "crypto"
	BindingNet        = "net"
	BindingOCI        = "oci"
)

// Operation identifies one host capability.
type Operation struct {
	binding string
	name    string
}

// Binding returns the capability family.
func (o Operation) Binding() string { return o.binding }

// Name returns the operation within the family.
func (o Operation) Name() string { return o.name }

// String returns "binding/name".
func (o Operation) String() string { return o.binding + "/" + o.name }

// IsZero reports whether o is the zero Operation.
func (o Operation) IsZero() bool { return o == Operation{} }

var (
	// KubernetesListResources lists resources cluster-wide.
	// entities.ListAllResourcesRequest -> entities.ResourceList
	KubernetesListResources = Operation{BindingKubernetes, "list_resources"}
	// KubernetesListResourcesByNamespace lists resources in one namespace.
	// entities.ListResourcesByNamespaceRequest -> entities.ResourceList
	KubernetesListResourcesByNamespace = Operation{BindingKubernetes, "list_resources_by_namespace"}
	// KubernetesGetResource fetches one resource.
	// entities.GetResourceRequest -> entities.Resource
	KubernetesGetResource = Operation{BindingKubernetes, "get_resource"}
	// KubernetesCanI runs a subject access review.
	// entities.CanIRequest -> entities.CanIResponse
	KubernetesCanI = Operation{BindingKubernetes, "can_i"}

	// CryptoVerifyCertificate verifies an X.509 certificate.
	// entities.CertificateVerificationRequest -> entities.CertificateVerificationResponse
	CryptoVerifyCertificate = Operation{BindingCrypto, "verify_certificate"}

	// NetLookupHost resolves a hostname.
	// entities.LookupHostRequest -> entities.LookupHostResponse
	NetLookupHost = Operation{BindingNet, "lookup_host"}

	// OCIManifestDigest resolves an image reference to a manifest digest.
	// entities.ManifestDigestRequest -> entities.ManifestDigestResponse
	OCIManifestDigest = Operation{BindingOCI, "manifest_digest"}
	// OCIVerifyPublicKeys verifies image signatures with public keys.
	// entities.VerifyPublicKeysRequest -> entities.VerificationResponse
	OCIVerifyPublicKeys = Operation{BindingOCI, "verify_public_keys"}
)

var operations = []Operation{
	KubernetesListResources,
	KubernetesListResourcesByNamespace,
	KubernetesGetResource,
	KubernetesCanI,
	CryptoVerifyCertificate,
	NetLookupHost,
	OCIManifestDigest,
	OCIVerifyPublicKeys,
}

// Operations returns every known operation in a stable order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// Lookup resolves a (binding, operation) pair received over the wire.
func Lookup(binding, name string) (Operation, bool) {
	for _, op := range operations {
		if op.binding == binding && op.name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Family returns the operations of one binding.
func Family(binding string) []Operation {
	var out []Operation
	for _, op := range operations {
		if op.binding == binding {
			out = append(out, op)
		}
	}
	return out
}
