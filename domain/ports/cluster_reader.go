package ports

import (
	"context"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// ClusterReader gives read-only access to cluster state for the kubernetes
// capability family.
type ClusterReader interface {
	ListResources(ctx context.Context, req entities.ListAllResourcesRequest) (*entities.ResourceList, error)
	ListResourcesByNamespace(ctx context.Context, req entities.ListResourcesByNamespaceRequest) (*entities.ResourceList, error)
	GetResource(ctx context.Context, req entities.GetResourceRequest) (entities.Document, error)
	CanI(ctx context.Context, req entities.CanIRequest) (*entities.CanIResponse, error)
}
