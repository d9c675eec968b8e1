// Package oci wraps the oci capability family.
package oci

import (
	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// ManifestDigest resolves image to the digest of its manifest.
func ManifestDigest(c *capabilities.Client, image string) (string, error) {
	resp, err := capabilities.Invoke[entities.ManifestDigestRequest, entities.ManifestDigestResponse](c, capabilities.OCIManifestDigest, entities.ManifestDigestRequest{Image: image})
	if err != nil {
		return "", err
	}
	return resp.Digest, nil
}

// VerifyPublicKeys verifies the signatures of an image.
func VerifyPublicKeys(c *capabilities.Client, req entities.VerifyPublicKeysRequest) (*entities.VerificationResponse, error) {
	resp, err := capabilities.Invoke[entities.VerifyPublicKeysRequest, entities.VerificationResponse](c, capabilities.OCIVerifyPublicKeys, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
