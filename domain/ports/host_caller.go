package ports

// HostCaller issues a single synchronous call across the sandbox boundary.
//
// The call blocks until the host replies. On success it returns the raw
// payload produced by the host. When the host rejects the call the error is
// an *entities.HostFault carrying the host's code and message; any other
// error is a transport failure.
type HostCaller interface {
	HostCall(binding, operation string, payload []byte) ([]byte, error)
}

// HostCallerFunc adapts a function to HostCaller.
type HostCallerFunc func(binding, operation string, payload []byte) ([]byte, error)

// HostCall implements HostCaller.
func (f HostCallerFunc) HostCall(binding, operation string, payload []byte) ([]byte, error) {
	return f(binding, operation, payload)
}
