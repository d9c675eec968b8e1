package ports

import (
	"context"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// ImageResolver resolves container image references.
type ImageResolver interface {
	// ManifestDigest returns the digest of the manifest the reference points to.
	ManifestDigest(ctx context.Context, image string) (string, error)
}

// SignatureVerifier checks image signatures.
type SignatureVerifier interface {
	VerifyPublicKeys(ctx context.Context, req entities.VerifyPublicKeysRequest) (*entities.VerificationResponse, error)
}
