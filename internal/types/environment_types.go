package types

// SwitchEnvironmentRequest changes the process-wide current environment.
// Switching to production requires Confirm=true.
type SwitchEnvironmentRequest struct {
	Type    string `json:"type" validate:"required"`
	Confirm bool   `json:"confirm"`
}
