package utils

import (
	"github.com/bytedance/sonic"
)

// ToJSON serializes v to a JSON string.
func ToJSON(v any) (string, error) {
	bytes, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// FromJSON parses a JSON string into T.
func FromJSON[T any](s string) (T, error) {
	var v T
	err := sonic.UnmarshalString(s, &v)
	return v, err
}

// Marshal serializes v to JSON bytes.
func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal parses JSON bytes into v.
func Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// UnmarshalString parses a JSON string into v.
func UnmarshalString(s string, v any) error {
	return sonic.UnmarshalString(s, v)
}

// ToMap converts a struct to a generic map through JSON.
func ToMap(v any) (map[string]any, error) {
	bytes, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := sonic.Unmarshal(bytes, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ValidString reports whether s is valid JSON.
func ValidString(s string) bool {
	return sonic.ValidString(s)
}
