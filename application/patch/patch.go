// Package patch computes and applies RFC 6902 JSON Patches.
//
// Diff is a positional structural diff: map keys are visited in sorted order
// and sequences are compared index by index, so the same input pair always
// yields the same operation list. Operations are ordered so that applying
// them one after another to the original produces the desired document.
package patch

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapeToken escapes a single reference token for a JSON Pointer.
func EscapeToken(token string) string {
	return tokenEscaper.Replace(token)
}

// Pointer joins reference tokens into a JSON Pointer.
func Pointer(tokens ...string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(t))
	}
	return b.String()
}

// Diff returns the operations that turn original into desired.
//
// Inputs may be Go values, json.RawMessage or entities.Document; all are
// normalised through JSON first, so struct tags and omitted fields behave
// exactly as they would on the wire.
func Diff(original, desired any) ([]entities.PatchOperation, error) {
	from, err := normalize(original)
	if err != nil {
		return nil, fmt.Errorf("patch: original document: %w", err)
	}
	to, err := normalize(desired)
	if err != nil {
		return nil, fmt.Errorf("patch: desired document: %w", err)
	}

	var ops []entities.PatchOperation
	diffValue("", from, to, &ops)
	return ops, nil
}

func normalize(v any) (any, error) {
	var raw []byte
	switch doc := v.(type) {
	case entities.Document:
		if doc.IsEmpty() {
			return nil, nil
		}
		raw = doc
	case json.RawMessage:
		raw = doc
	default:
		b, err := wireformat.JSON.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	var tree any
	if err := wireformat.JSON.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func diffValue(path string, from, to any, ops *[]entities.PatchOperation) {
	switch a := from.(type) {
	case map[string]any:
		if b, ok := to.(map[string]any); ok {
			diffObject(path, a, b, ops)
			return
		}
	case []any:
		if b, ok := to.([]any); ok {
			diffArray(path, a, b, ops)
			return
		}
	default:
		if scalarEqual(from, to) {
			return
		}
	}
	*ops = append(*ops, entities.PatchOperation{Op: entities.PatchReplace, Path: path, Value: to})
}

// diffObject lists removals, then changes to shared keys, then additions.
func diffObject(path string, from, to map[string]any, ops *[]entities.PatchOperation) {
	for _, k := range sortedKeys(from) {
		if _, ok := to[k]; !ok {
			*ops = append(*ops, entities.PatchOperation{Op: entities.PatchRemove, Path: path + "/" + EscapeToken(k)})
		}
	}
	for _, k := range sortedKeys(from) {
		if b, ok := to[k]; ok {
			diffValue(path+"/"+EscapeToken(k), from[k], b, ops)
		}
	}
	for _, k := range sortedKeys(to) {
		if _, ok := from[k]; !ok {
			*ops = append(*ops, entities.PatchOperation{Op: entities.PatchAdd, Path: path + "/" + EscapeToken(k), Value: to[k]})
		}
	}
}

// diffArray compares the shared prefix position by position, then appends
// new trailing elements in ascending order or drops surplus ones from the
// end so earlier indexes stay valid.
func diffArray(path string, from, to []any, ops *[]entities.PatchOperation) {
	common := min(len(from), len(to))
	for i := 0; i < common; i++ {
		diffValue(path+"/"+strconv.Itoa(i), from[i], to[i], ops)
	}
	for i := common; i < len(to); i++ {
		*ops = append(*ops, entities.PatchOperation{Op: entities.PatchAdd, Path: path + "/" + strconv.Itoa(i), Value: to[i]})
	}
	for i := len(from) - 1; i >= common; i-- {
		*ops = append(*ops, entities.PatchOperation{Op: entities.PatchRemove, Path: path + "/" + strconv.Itoa(i)})
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// scalarEqual compares two decoded scalars. Numbers compare by value, so
// 1 and 1.0 are the same. Comparison is exact at any width.
func scalarEqual(a, b any) bool {
	an, aIsNum := a.(json.Number)
	bn, bIsNum := b.(json.Number)
	if aIsNum || bIsNum {
		if !aIsNum || !bIsNum {
			return false
		}
		if an == bn {
			return true
		}
		ar, okA := new(big.Rat).SetString(an.String())
		br, okB := new(big.Rat).SetString(bn.String())
		return okA && okB && ar.Cmp(br) == 0
	}
	switch a.(type) {
	case nil, bool, string:
		return a == b
	}
	return false
}

// Marshal encodes ops as a JSON Patch document. A nil list encodes as [].
func Marshal(ops []entities.PatchOperation) ([]byte, error) {
	if ops == nil {
		ops = []entities.PatchOperation{}
	}
	return json.Marshal(ops)
}

// Apply applies ops in order to document and returns the result.
func Apply(document []byte, ops []entities.PatchOperation) ([]byte, error) {
	encoded, err := Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("patch: encode operations: %w", err)
	}
	return ApplyRaw(document, encoded)
}

// ApplyRaw applies an encoded JSON Patch document, such as the patch field
// of a ValidationResponse.
func ApplyRaw(document, patchJSON []byte) ([]byte, error) {
	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("patch: decode: %w", err)
	}
	out, err := p.Apply(document)
	if err != nil {
		return nil, fmt.Errorf("patch: apply: %w", err)
	}
	return out, nil
}
