// Package hostfuncs implements the host side of policy capabilities.
//
// A Registry maps each capabilities.Operation to a ByteHandler. Handlers are
// plain Go with no WASM runtime dependencies, so the same registry serves
// the wazero host in package host and the in-process fake host used by
// policy tests.
package hostfuncs
