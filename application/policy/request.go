package policy

import (
	"log/slog"

	"github.com/warden-dev/policy-sdk-go/application/response"
	"github.com/warden-dev/policy-sdk-go/capabilities"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// Request is everything one validate call sees. It is built per call and
// discarded afterwards.
type Request[S any] struct {
	Admission    *entities.AdmissionRequest
	Capabilities *capabilities.Client
	Logger       *slog.Logger
	Settings     S
}

// Mutate accepts the request with the patch that turns the submitted
// object into desired.
func (r *Request[S]) Mutate(desired any, opts ...response.Option) (entities.ValidationResponse, error) {
	return response.Mutate(r.Admission.Object, desired, opts...)
}
