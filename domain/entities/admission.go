package entities

import "fmt"

// Operation is the kind of change an admission request describes.
type Operation string

const (
	OperationCreate  Operation = "CREATE"
	OperationUpdate  Operation = "UPDATE"
	OperationDelete  Operation = "DELETE"
	OperationConnect Operation = "CONNECT"
)

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete, OperationConnect:
		return true
	}
	return false
}

// GroupVersionKind identifies a resource type.
type GroupVersionKind struct {
	Group   string `json:"group"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
}

func (g GroupVersionKind) String() string {
	if g.Group == "" {
		return fmt.Sprintf("%s/%s", g.Version, g.Kind)
	}
	return fmt.Sprintf("%s/%s/%s", g.Group, g.Version, g.Kind)
}

// GroupVersionResource identifies a resource collection.
type GroupVersionResource struct {
	Group    string `json:"group"`
	Version  string `json:"version"`
	Resource string `json:"resource"`
}

// UserInfo describes the user that issued the request.
type UserInfo struct {
	Extra    map[string][]string `json:"extra,omitempty"`
	Username string              `json:"username,omitempty"`
	UID      string              `json:"uid,omitempty"`
	Groups   []string            `json:"groups,omitempty"`
}

// AdmissionRequest is the proposed resource change under evaluation.
// Object, OldObject and Options are kept as raw documents.
type AdmissionRequest struct {
	RequestKind        *GroupVersionKind     `json:"requestKind,omitempty"`
	RequestResource    *GroupVersionResource `json:"requestResource,omitempty"`
	DryRun             *bool                 `json:"dryRun,omitempty"`
	UID                string                `json:"uid,omitempty"`
	SubResource        string                `json:"subResource,omitempty"`
	RequestSubResource string                `json:"requestSubResource,omitempty"`
	Name               string                `json:"name,omitempty"`
	Namespace          string                `json:"namespace,omitempty"`
	Operation          Operation             `json:"operation"`
	Kind               GroupVersionKind      `json:"kind"`
	Resource           GroupVersionResource  `json:"resource"`
	UserInfo           UserInfo              `json:"userInfo"`
	Object             Document              `json:"object"`
	OldObject          Document              `json:"oldObject,omitempty"`
	Options            Document              `json:"options,omitempty"`
}

// IsDryRun reports whether the request was issued as a dry run.
func (r *AdmissionRequest) IsDryRun() bool {
	return r.DryRun != nil && *r.DryRun
}

// ObjectAs decodes the target object into v.
func (r *AdmissionRequest) ObjectAs(v any) error {
	return r.Object.Decode(v)
}

// OldObjectAs decodes the previous version of the object into v.
func (r *AdmissionRequest) OldObjectAs(v any) error {
	return r.OldObject.Decode(v)
}

// ValidationRequest pairs an admission request with the raw settings the
// host evaluated it under.
type ValidationRequest struct {
	Request  AdmissionRequest `json:"request"`
	Settings Document         `json:"settings,omitempty"`
}
