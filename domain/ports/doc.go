// Package ports defines interfaces for infrastructure operations.
// These ports enable dependency inversion - domain logic depends on abstractions,
// and infrastructure adapters implement these interfaces.
//
// HostCaller is the sandbox boundary seen from the guest. The remaining ports
// are implemented on the host side and back the capability families.
package ports
