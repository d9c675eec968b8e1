package settings_test

import (
	stdErrors "errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/application/settings"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

type exemptions struct {
	Namespaces []string `json:"namespaces,omitempty"`
}

type registrySettings struct {
	Exemptions  *exemptions `json:"exemptions,omitempty"`
	Mode        string      `json:"mode,omitempty" validate:"omitempty,oneof=enforce monitor"`
	Registries  []string    `json:"allowedRegistries" jsonschema:"required" validate:"min=1,dive,required"`
	MaxReplicas int         `json:"maxReplicas,omitempty" validate:"gte=0"`
}

func (s registrySettings) Validate() error {
	if s.Mode == "monitor" && s.MaxReplicas > 0 {
		return stdErrors.New("maxReplicas has no effect in monitor mode")
	}
	return nil
}

type pointerValidated struct {
	Threshold int `json:"threshold"`
}

func (p *pointerValidated) Validate() error {
	if p.Threshold > 10 {
		return &errors.SettingsError{Field: "threshold", Err: stdErrors.New("must be at most 10")}
	}
	return nil
}

func TestDecode(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", " null\n"} {
		s, err := settings.Decode[registrySettings]([]byte(raw))
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, registrySettings{}, s)
	}

	s, err := settings.Decode[registrySettings]([]byte(`{"allowedRegistries":["ghcr.io"],"mode":"enforce"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"ghcr.io"}, s.Registries)
	assert.Equal(t, "enforce", s.Mode)

	_, err = settings.Decode[registrySettings]([]byte(`{"allowedRegistries":`))
	var se *errors.SettingsError
	require.ErrorAs(t, err, &se)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		valid   bool
		message string
	}{
		{name: "valid", raw: `{"allowedRegistries":["ghcr.io","registry.k8s.io"]}`, valid: true},
		{name: "unknown keys tolerated", raw: `{"allowedRegistries":["ghcr.io"],"futureOption":true}`, valid: true},
		{name: "nested struct", raw: `{"allowedRegistries":["ghcr.io"],"exemptions":{"namespaces":["kube-system"]}}`, valid: true},
		{
			name:    "missing settings fail tag validation",
			raw:     ``,
			message: "settings validation failed for field 'allowedRegistries': failed on the 'min=1' rule",
		},
		{name: "required property missing", raw: `{}`, message: "allowedRegistries"},
		{name: "wrong type", raw: `{"allowedRegistries":"ghcr.io"}`, message: "field 'allowedRegistries'"},
		{name: "wrong nested type", raw: `{"allowedRegistries":["a"],"exemptions":{"namespaces":"x"}}`, message: "exemptions.namespaces"},
		{name: "enum tag", raw: `{"allowedRegistries":["ghcr.io"],"mode":"audit"}`, message: "field 'mode'"},
		{name: "dive tag", raw: `{"allowedRegistries":[""]}`, message: "allowedRegistries[0]"},
		{
			name:    "semantic validation",
			raw:     `{"allowedRegistries":["ghcr.io"],"mode":"monitor","maxReplicas":3}`,
			message: "settings validation failed: maxReplicas has no effect in monitor mode",
		},
		{name: "malformed", raw: `{"allowedRegistries":[`, message: "settings validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := settings.Validate[registrySettings]([]byte(tt.raw))
			assert.Equal(t, tt.valid, resp.Valid)
			if tt.valid {
				assert.Empty(t, resp.Message)
				return
			}
			assert.Contains(t, resp.Message, tt.message)
		})
	}
}

func TestValidate_PointerReceiver(t *testing.T) {
	assert.True(t, settings.Validate[pointerValidated]([]byte(`{"threshold":3}`)).Valid)

	resp := settings.Validate[pointerValidated]([]byte(`{"threshold":30}`))
	assert.False(t, resp.Valid)
	assert.Equal(t, "settings validation failed for field 'threshold': must be at most 10", resp.Message)
}

func TestValidate_UntypedSettings(t *testing.T) {
	assert.True(t, settings.Validate[map[string]any]([]byte(`{"anything":[1,2,3]}`)).Valid)
	assert.True(t, settings.Validate[map[string]any](nil).Valid)
	assert.False(t, settings.Validate[map[string]any]([]byte(`[1]`)).Valid)
}

func TestLoad(t *testing.T) {
	s, err := settings.Load[registrySettings]([]byte(`{"allowedRegistries":["ghcr.io"],"maxReplicas":2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.MaxReplicas)

	_, err = settings.Load[registrySettings]([]byte(`{"allowedRegistries":["ghcr.io"],"maxReplicas":-1}`))
	var se *errors.SettingsError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "maxReplicas", se.Field)
}

func TestCheck(t *testing.T) {
	require.NoError(t, settings.Check(registrySettings{Registries: []string{"ghcr.io"}}))
	require.Error(t, settings.Check(registrySettings{}))
	require.NoError(t, settings.Check[*registrySettings](nil))
}

func TestSchema(t *testing.T) {
	raw, err := settings.Schema[registrySettings]()
	require.NoError(t, err)

	schema := string(raw)
	assert.Contains(t, schema, `"allowedRegistries"`)
	assert.Contains(t, schema, `"required"`)
	assert.Contains(t, schema, `"maxReplicas"`)
	assert.NotContains(t, schema, `"additionalProperties": false`)
}

func TestValidate_NeverPanicsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("every payload yields a response with a reason when invalid", prop.ForAll(
		func(raw string) bool {
			resp := settings.Validate[registrySettings]([]byte(raw))
			return resp.Valid == (resp.Message == "")
		},
		gen.OneGenOf(
			gen.AnyString(),
			gen.AlphaString().Map(func(s string) string { return `{"allowedRegistries":["` + s + `"]}` }),
			gen.Const(`{"allowedRegistries":["ghcr.io"]}`),
		),
	))

	properties.TestingRun(t)
}
