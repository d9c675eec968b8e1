//go:build !wasip1

package wasm

import "errors"

// ErrNotInSandbox is returned by Host outside a WASM guest. Native tests
// inject a fake ports.HostCaller instead.
var ErrNotInSandbox = errors.New("wasm host calls are not available in native builds")

func rawHostCall(_, _ string, _ []byte) ([]byte, error) {
	return nil, ErrNotInSandbox
}
