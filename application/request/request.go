// Package request parses the admission request envelope the host hands to
// validate.
package request

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

const envelopeKey = "request"

// Parse decodes raw into a ValidationRequest. raw is either the envelope
// {"request": ..., "settings": ...} or a bare admission request; a top-level
// "request" key selects the envelope form.
//
// Object documents are kept byte for byte so fields this SDK does not know
// about survive to the patch engine.
func Parse(raw []byte) (*entities.ValidationRequest, error) {
	top, err := decodeObject(raw, "")
	if err != nil {
		return nil, err
	}

	out := &entities.ValidationRequest{}
	reqRaw := raw
	fields := top

	if inner, ok := top[envelopeKey]; ok {
		if isNull(inner) {
			return nil, errors.MissingField(envelopeKey)
		}
		if fields, err = decodeObject(inner, envelopeKey); err != nil {
			return nil, err
		}
		reqRaw = inner
		if settings, ok := top["settings"]; ok && !isNull(settings) {
			out.Settings = entities.Document(settings)
		}
	}

	for _, required := range []string{"operation", "object"} {
		if v, ok := fields[required]; !ok || isNull(v) {
			return nil, errors.MissingField(required)
		}
	}

	if err := wireformat.JSON.Unmarshal(reqRaw, &out.Request); err != nil {
		return nil, &errors.ParseError{Kind: errors.ParseMalformed, Field: envelopeKey, Err: err}
	}

	if out.Request.Object.IsEmpty() {
		return nil, errors.MissingField("object")
	}
	if !out.Request.Operation.Valid() {
		return nil, &errors.ParseError{
			Kind:  errors.ParseInvalidField,
			Field: "operation",
			Err:   fmt.Errorf("unknown operation %q", out.Request.Operation),
		}
	}

	if out.Request.OldObject.IsEmpty() {
		out.Request.OldObject = nil
	}
	if out.Request.Options.IsEmpty() {
		out.Request.Options = nil
	}
	return out, nil
}

func decodeObject(raw []byte, field string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := wireformat.JSON.Unmarshal(raw, &fields); err != nil {
		return nil, &errors.ParseError{Kind: errors.ParseMalformed, Field: field, Err: err}
	}
	if fields == nil {
		// A bare JSON null.
		return nil, &errors.ParseError{Kind: errors.ParseMalformed, Field: field, Err: fmt.Errorf("expected an object, got null")}
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
