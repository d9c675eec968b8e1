package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is an opaque structured document carried verbatim.
// Unknown fields survive parsing because the raw bytes are never re-encoded
// unless the caller asks for a decoded view.
type Document json.RawMessage

var nullLiteral = []byte("null")

// MarshalJSON returns the raw document, or null when empty.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return nullLiteral, nil
	}
	return d, nil
}

// UnmarshalJSON keeps a copy of the raw bytes.
func (d *Document) UnmarshalJSON(data []byte) error {
	if d == nil {
		return fmt.Errorf("entities.Document: UnmarshalJSON on nil pointer")
	}
	*d = append((*d)[0:0], data...)
	return nil
}

// IsEmpty reports whether the document is absent or JSON null.
func (d Document) IsEmpty() bool {
	trimmed := bytes.TrimSpace(d)
	return len(trimmed) == 0 || bytes.Equal(trimmed, nullLiteral)
}

// Decode unmarshals the document into v. Numbers decode as json.Number when
// v is an interface, so integers wider than 53 bits are kept exact.
func (d Document) Decode(v any) error {
	if d.IsEmpty() {
		return fmt.Errorf("document is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	return dec.Decode(v)
}

// Value returns the decoded tree: map[string]any, []any, json.Number,
// string, bool or nil.
func (d Document) Value() (any, error) {
	if d.IsEmpty() {
		return nil, nil
	}
	var v any
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Raw returns the document bytes.
func (d Document) Raw() json.RawMessage {
	return json.RawMessage(d)
}

// NewDocument encodes v as a Document.
func NewDocument(v any) (Document, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return Document(raw), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Document(b), nil
}
