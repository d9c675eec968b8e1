package hostfuncs

import (
	"context"
	"fmt"

	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
)

// Compile-time interface compliance check
var _ ports.ImageResolver = (*RegistryResolver)(nil)

// RegistryResolver resolves manifest digests against OCI registries.
type RegistryResolver struct {
	plainHTTP bool
}

// RegistryResolverOption configures a RegistryResolver.
type RegistryResolverOption func(*RegistryResolver)

// WithPlainHTTP talks to registries over plain HTTP. Only for local
// test registries.
func WithPlainHTTP(enabled bool) RegistryResolverOption {
	return func(r *RegistryResolver) {
		r.plainHTTP = enabled
	}
}

// NewRegistryResolver creates a RegistryResolver using anonymous access.
func NewRegistryResolver(opts ...RegistryResolverOption) *RegistryResolver {
	r := &RegistryResolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ParseImage splits an image reference into its repository and tag or
// digest. A reference without either resolves "latest".
func ParseImage(image string) (repository, reference string, err error) {
	ref, err := registry.ParseReference(image)
	if err != nil {
		return "", "", err
	}
	return ref.Registry + "/" + ref.Repository, ref.ReferenceOrDefault(), nil
}

// ManifestDigest implements ports.ImageResolver.
func (r *RegistryResolver) ManifestDigest(ctx context.Context, image string) (string, error) {
	repository, reference, err := ParseImage(image)
	if err != nil {
		return "", BadRequest("invalid image reference %q: %v", image, err)
	}

	repo, err := remote.NewRepository(repository)
	if err != nil {
		return "", BadRequest("invalid repository %q: %v", repository, err)
	}
	repo.PlainHTTP = r.plainHTTP

	desc, err := repo.Resolve(ctx, reference)
	if err != nil {
		return "", Internal(fmt.Sprintf("resolve %s: %v", image, err))
	}
	return desc.Digest.String(), nil
}

// OCIBundle serves the oci family. verifier may be nil, in which case
// verify_public_keys is not offered.
func OCIBundle(resolver ports.ImageResolver, verifier ports.SignatureVerifier) Bundle {
	handlers := map[capabilities.Operation]ByteHandler{
		capabilities.OCIManifestDigest: NewCBORHandler(func(ctx context.Context, req entities.ManifestDigestRequest) (entities.ManifestDigestResponse, error) {
			if req.Image == "" {
				return entities.ManifestDigestResponse{}, BadRequest("image is required")
			}
			digest, err := resolver.ManifestDigest(ctx, req.Image)
			if err != nil {
				return entities.ManifestDigestResponse{}, err
			}
			return entities.ManifestDigestResponse{Digest: digest}, nil
		}),
	}
	if verifier != nil {
		handlers[capabilities.OCIVerifyPublicKeys] = NewCBORHandler(func(ctx context.Context, req entities.VerifyPublicKeysRequest) (*entities.VerificationResponse, error) {
			if req.Image == "" || len(req.PubKeys) == 0 {
				return nil, BadRequest("image and pub_keys are required")
			}
			return verifier.VerifyPublicKeys(ctx, req)
		})
	}
	return &staticBundle{handlers: handlers}
}
