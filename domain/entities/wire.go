package entities

import "time"

// HostReply is the envelope a host returns for every host_call. Exactly one
// of Payload or Error is meaningful: a non-nil Error marks a failed call.
type HostReply struct {
	Error   *HostFault `json:"error,omitempty"`
	Payload []byte     `json:"payload,omitempty"`
}

// Failed reports whether the host rejected the call.
func (r HostReply) Failed() bool {
	return r.Error != nil
}

// LogRecord is a log entry shipped from the guest to the host.
type LogRecord struct {
	Time    time.Time `json:"time"`
	Attrs   []LogAttr `json:"attrs,omitempty"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// LogAttr is a single flattened slog attribute. Group members are flattened
// into dotted keys.
type LogAttr struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "any"
	Value string `json:"value"` // String representation of the value
}
