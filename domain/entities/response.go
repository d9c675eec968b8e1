package entities

// PatchTypeJSONPatch is the only patch type a policy emits.
const PatchTypeJSONPatch = "JSONPatch"

// Status carries the rejection code and message shown to the user.
type Status struct {
	Message string `json:"message,omitempty"`
	Code    uint16 `json:"code,omitempty"`
}

// ValidationResponse is the decision a policy hands back to the host.
//
// Allowed responses carry no Status; a Patch is only valid on an allowed
// response and always comes with PatchType set to PatchTypeJSONPatch.
type ValidationResponse struct {
	Status           *Status           `json:"status,omitempty"`
	PatchType        *string           `json:"patchType,omitempty"`
	AuditAnnotations map[string]string `json:"auditAnnotations,omitempty"`
	UID              string            `json:"uid,omitempty"`
	Patch            []byte            `json:"patch,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`
	Allowed          bool              `json:"allowed"`
}

// IsMutating reports whether the response carries a patch.
func (r ValidationResponse) IsMutating() bool {
	return len(r.Patch) > 0
}

// SettingsValidationResponse is the outcome of validate_settings.
type SettingsValidationResponse struct {
	Message string `json:"message,omitempty"`
	Valid   bool   `json:"valid"`
}
