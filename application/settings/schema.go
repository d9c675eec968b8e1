package settings

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/warden-dev/policy-sdk-go/domain/errors"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

const schemaResource = "settings.schema.json"

// compiled caches compiled schemas per settings type.
var compiled sync.Map // map[reflect.Type]*jsonschema.Schema

// Schema returns the JSON Schema (draft 2020-12) reflected from S.
//
// Fields are optional unless tagged `jsonschema:"required"`, and unknown
// keys are allowed so settings written for a newer policy version still
// load.
func Schema[S any]() ([]byte, error) {
	return generate(reflect.TypeFor[S]())
}

func generate(t reflect.Type) ([]byte, error) {
	reflector := invopop.Reflector{
		ExpandedStruct:             true,
		Anonymous:                  true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.ReflectFromType(t)

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, &errors.SchemaError{Type: t.String(), Err: fmt.Errorf("failed to marshal schema: %w", err)}
	}
	return out, nil
}

func compiledSchema(t reflect.Type) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(t); ok {
		return s.(*jsonschema.Schema), nil
	}

	raw, err := generate(t)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(raw)); err != nil {
		return nil, &errors.SchemaError{Type: t.String(), Err: err}
	}
	s, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, &errors.SchemaError{Type: t.String(), Err: err}
	}

	actual, _ := compiled.LoadOrStore(t, s)
	return actual.(*jsonschema.Schema), nil
}

// checkSchema validates the raw settings document against the schema of t.
func checkSchema(t reflect.Type, raw []byte) error {
	if t.Kind() == reflect.Interface {
		return nil
	}
	s, err := compiledSchema(t)
	if err != nil {
		return err
	}

	var doc any
	if err := wireformat.JSON.Unmarshal(raw, &doc); err != nil {
		return &errors.SettingsError{Err: err}
	}
	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if stdErrors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			return &errors.SettingsError{
				Field: strings.ReplaceAll(strings.TrimPrefix(leaf.InstanceLocation, "/"), "/", "."),
				Err:   stdErrors.New(leaf.Message),
			}
		}
		return &errors.SettingsError{Err: err}
	}
	return nil
}
