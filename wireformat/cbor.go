package wireformat

import (
	stdErrors "errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

const cborName = "cbor"

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	encOpts := cbor.CoreDetEncOptions()
	encOpts.Time = cbor.TimeRFC3339Nano

	enc, err := encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: invalid cbor encoding options: %v", err))
	}

	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Unknown struct fields are ignored by default.
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: invalid cbor decoding options: %v", err))
	}

	return cborCodec{enc: enc, dec: dec}
}

func (cborCodec) Name() string { return cborName }

func (c cborCodec) Marshal(v any) ([]byte, error) {
	data, err := c.enc.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor encode %s: %w", targetName(v), err)
	}
	return data, nil
}

func (c cborCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return &errors.DecodeError{Kind: errors.DecodeMalformed, Codec: cborName, Target: targetName(v), Err: io.ErrUnexpectedEOF}
	}
	if err := c.dec.Unmarshal(data, v); err != nil {
		return &errors.DecodeError{Kind: classifyCBOR(err), Codec: cborName, Target: targetName(v), Err: err}
	}
	return nil
}

func classifyCBOR(err error) errors.DecodeErrorKind {
	var typeErr *cbor.UnmarshalTypeError
	if stdErrors.As(err, &typeErr) {
		return errors.DecodeTypeMismatch
	}
	return errors.DecodeMalformed
}
