package types

// UpdateAnonymizationConfigRequest replaces the compliance configuration.
type UpdateAnonymizationConfigRequest struct {
	Level          string   `json:"level" validate:"required"`
	PreserveFormat *bool    `json:"preserveFormat"`
	HashSalt       string   `json:"hashSalt"`
	Fields         []string `json:"fields"`
}

// TestAnonymizeRequest runs a sample payload through the anonymizer.
type TestAnonymizeRequest struct {
	Data  any    `json:"data" validate:"required"`
	Level string `json:"level"`
}

// CheckSensitiveRequest scans a string for sensitive content.
type CheckSensitiveRequest struct {
	Text string `json:"text" validate:"required"`
}

// SensitiveCheckInfo is the scan response.
type SensitiveCheckInfo struct {
	Sensitive bool `json:"sensitive"`
}
