package wireformat

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

const jsonName = "json"

// jsonCodec decodes numbers as json.Number when the target is untyped, so
// integers in object documents are never rounded through float64.
type jsonCodec struct{}

func (jsonCodec) Name() string { return jsonName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json encode %s: %w", targetName(v), err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	fail := func(kind errors.DecodeErrorKind, err error) error {
		return &errors.DecodeError{Kind: kind, Codec: jsonName, Target: targetName(v), Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return fail(errors.DecodeMalformed, io.ErrUnexpectedEOF)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stdErrors.As(err, &typeErr) {
			return fail(errors.DecodeTypeMismatch, err)
		}
		return fail(errors.DecodeMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fail(errors.DecodeMalformed, fmt.Errorf("trailing data after top-level value"))
	}
	return nil
}
