package entities

import (
	"encoding/json"
	"fmt"
)

// PatchOp is an RFC 6902 operation name.
type PatchOp string

const (
	PatchAdd     PatchOp = "add"
	PatchRemove  PatchOp = "remove"
	PatchReplace PatchOp = "replace"
	PatchMove    PatchOp = "move"
	PatchCopy    PatchOp = "copy"
	PatchTest    PatchOp = "test"
)

// PatchOperation is one step of a JSON Patch document. A patch is an ordered
// list: each operation applies to the document produced by the previous one.
type PatchOperation struct {
	Value any     `json:"value,omitempty"`
	Op    PatchOp `json:"op"`
	Path  string  `json:"path"`
	From  string  `json:"from,omitempty"`
}

// RequiresValue reports whether op carries a value member.
func (op PatchOp) RequiresValue() bool {
	return op == PatchAdd || op == PatchReplace || op == PatchTest
}

// RequiresFrom reports whether op carries a from member.
func (op PatchOp) RequiresFrom() bool {
	return op == PatchMove || op == PatchCopy
}

// Validate checks that the operation is well formed.
func (p PatchOperation) Validate() error {
	switch p.Op {
	case PatchAdd, PatchRemove, PatchReplace, PatchMove, PatchCopy, PatchTest:
	default:
		return fmt.Errorf("unknown patch operation %q", p.Op)
	}
	if p.Path != "" && p.Path[0] != '/' {
		return fmt.Errorf("patch path %q must be empty or start with '/'", p.Path)
	}
	if p.Op.RequiresFrom() && p.From == "" {
		return fmt.Errorf("patch operation %q requires a from pointer", p.Op)
	}
	return nil
}

type patchOperationWire struct {
	Op    PatchOp          `json:"op"`
	Path  string           `json:"path"`
	From  string           `json:"from,omitempty"`
	Value *json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON emits members in op, path, from, value order. A nil value is
// written as null for add, replace and test, and omitted otherwise.
func (p PatchOperation) MarshalJSON() ([]byte, error) {
	w := patchOperationWire{Op: p.Op, Path: p.Path}
	if p.Op.RequiresFrom() {
		w.From = p.From
	}
	if p.Op.RequiresValue() {
		raw, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		msg := json.RawMessage(raw)
		w.Value = &msg
	}
	return json.Marshal(w)
}
