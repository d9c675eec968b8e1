// Package wireformat is the envelope codec for values crossing the sandbox
// boundary. The host and guest modules built against different SDK versions
// must stay compatible, so both encodings are self-describing, deterministic
// and tolerant of unknown map keys.
//
// CBOR carries capability calls and log records. JSON carries admission
// documents, settings and responses, which the host supplies and consumes
// as JSON.
package wireformat

import (
	"reflect"
	"strings"
)

// Codec encodes and decodes envelope payloads.
type Codec interface {
	// Name identifies the encoding in errors and logs.
	Name() string
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into v. Failures are *errors.DecodeError.
	Unmarshal(data []byte, v any) error
}

var (
	// CBOR is the deterministic binary envelope.
	CBOR Codec = newCBORCodec()
	// JSON is the document envelope.
	JSON Codec = jsonCodec{}
)

// Encode encodes v with the default (CBOR) envelope.
func Encode(v any) ([]byte, error) {
	return CBOR.Marshal(v)
}

// Decode decodes data into v with the default (CBOR) envelope.
func Decode(data []byte, v any) error {
	return CBOR.Unmarshal(data, v)
}

// targetName names the type a decode was aimed at.
func targetName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	return strings.TrimPrefix(t.String(), "*")
}
