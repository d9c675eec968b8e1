package hostfuncs

import (
	"context"

	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
)

// KubernetesBundle serves the kubernetes family from reader.
func KubernetesBundle(reader ports.ClusterReader) Bundle {
	return &staticBundle{
		handlers: map[capabilities.Operation]ByteHandler{
			capabilities.KubernetesListResources: NewCBORHandler(func(ctx context.Context, req entities.ListAllResourcesRequest) (*entities.ResourceList, error) {
				if req.APIVersion == "" || req.Kind == "" {
					return nil, BadRequest("api_version and kind are required")
				}
				return reader.ListResources(ctx, req)
			}),
			capabilities.KubernetesListResourcesByNamespace: NewCBORHandler(func(ctx context.Context, req entities.ListResourcesByNamespaceRequest) (*entities.ResourceList, error) {
				if req.APIVersion == "" || req.Kind == "" || req.Namespace == "" {
					return nil, BadRequest("api_version, kind and namespace are required")
				}
				return reader.ListResourcesByNamespace(ctx, req)
			}),
			capabilities.KubernetesGetResource: NewCBORHandler(func(ctx context.Context, req entities.GetResourceRequest) (entities.Resource, error) {
				if req.APIVersion == "" || req.Kind == "" || req.Name == "" {
					return entities.Resource{}, BadRequest("api_version, kind and name are required")
				}
				doc, err := reader.GetResource(ctx, req)
				if err != nil {
					return entities.Resource{}, err
				}
				return entities.Resource{Object: doc}, nil
			}),
			capabilities.KubernetesCanI: NewCBORHandler(func(ctx context.Context, req entities.CanIRequest) (*entities.CanIResponse, error) {
				return reader.CanI(ctx, req)
			}),
		},
	}
}
