package policytest

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ParseSettingsYAML converts a YAML settings fixture into the JSON
// settings document. Empty input yields JSON null.
func ParseSettingsYAML(data []byte) (json.RawMessage, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse settings yaml: %w", err)
	}
	normalized, err := jsonCompatible(v)
	if err != nil {
		return nil, fmt.Errorf("parse settings yaml: %w", err)
	}
	return json.Marshal(normalized)
}

// SettingsFromYAML is ParseSettingsYAML that fails the test on error.
func SettingsFromYAML(t testing.TB, text string) json.RawMessage {
	t.Helper()
	raw, err := ParseSettingsYAML([]byte(text))
	require.NoError(t, err)
	return raw
}

// SettingsFromFile reads a YAML (or JSON, a YAML subset) fixture.
func SettingsFromFile(t testing.TB, path string) json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "read settings fixture")
	raw, err := ParseSettingsYAML(data)
	require.NoError(t, err, "settings fixture %s", path)
	return raw
}

// jsonCompatible rewrites YAML values JSON cannot represent. Mapping keys
// must be scalars; they become strings.
func jsonCompatible(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			conv, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			val[k] = conv
		}
		return val, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			switch k.(type) {
			case map[string]any, map[any]any, []any:
				return nil, fmt.Errorf("unsupported mapping key of type %T", k)
			}
			conv, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = conv
		}
		return out, nil
	case []any:
		for i, item := range val {
			conv, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			val[i] = conv
		}
		return val, nil
	}
	return v, nil
}
