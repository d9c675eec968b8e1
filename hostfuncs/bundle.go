package hostfuncs

import (
	"github.com/warden-dev/policy-sdk-go/capabilities"
)

// Bundle is a pre-configured set of related handlers, usually one
// capability family.
type Bundle interface {
	Handlers() map[capabilities.Operation]ByteHandler
}

type staticBundle struct {
	handlers map[capabilities.Operation]ByteHandler
}

func (b *staticBundle) Handlers() map[capabilities.Operation]ByteHandler {
	return b.handlers
}

type compositeBundle struct {
	bundles []Bundle
}

func (b *compositeBundle) Handlers() map[capabilities.Operation]ByteHandler {
	result := make(map[capabilities.Operation]ByteHandler)
	for _, bundle := range b.bundles {
		for op, handler := range bundle.Handlers() {
			result[op] = handler
		}
	}
	return result
}

// Combine merges bundles into one. Later bundles win on overlap.
func Combine(bundles ...Bundle) Bundle {
	return &compositeBundle{bundles: bundles}
}

// WithBundle registers every handler of bundle.
func WithBundle(bundle Bundle) RegistryOption {
	return func(b *registryBuilder) {
		for op, handler := range bundle.Handlers() {
			if err := b.addHandler(op, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
