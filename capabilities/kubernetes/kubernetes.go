// Package kubernetes wraps the kubernetes capability family: read-only
// cluster lookups served by the host.
package kubernetes

import (
	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// ListResources lists resources of one kind across all namespaces.
func ListResources(c *capabilities.Client, req entities.ListAllResourcesRequest) (*entities.ResourceList, error) {
	resp, err := capabilities.Invoke[entities.ListAllResourcesRequest, entities.ResourceList](c, capabilities.KubernetesListResources, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListResourcesByNamespace lists resources of one kind in req.Namespace.
func ListResourcesByNamespace(c *capabilities.Client, req entities.ListResourcesByNamespaceRequest) (*entities.ResourceList, error) {
	resp, err := capabilities.Invoke[entities.ListResourcesByNamespaceRequest, entities.ResourceList](c, capabilities.KubernetesListResourcesByNamespace, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetResource fetches one resource as a raw document.
func GetResource(c *capabilities.Client, req entities.GetResourceRequest) (entities.Document, error) {
	resp, err := capabilities.Invoke[entities.GetResourceRequest, entities.Resource](c, capabilities.KubernetesGetResource, req)
	if err != nil {
		return nil, err
	}
	return resp.Object, nil
}

// GetResourceAs fetches one resource and decodes it into T.
func GetResourceAs[T any](c *capabilities.Client, req entities.GetResourceRequest) (T, error) {
	var out T
	doc, err := GetResource(c, req)
	if err != nil {
		return out, err
	}
	err = doc.Decode(&out)
	return out, err
}

// CanI asks the host whether a subject may perform an action.
func CanI(c *capabilities.Client, req entities.CanIRequest) (*entities.CanIResponse, error) {
	resp, err := capabilities.Invoke[entities.CanIRequest, entities.CanIResponse](c, capabilities.KubernetesCanI, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
