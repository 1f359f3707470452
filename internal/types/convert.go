package types

import (
	"flowpulse/pkg/utils"

	"github.com/jinzhu/copier"
)

// Convert copies matching fields from src into a fresh T. List- and
// JSON-typed fields that differ in shape are left for the caller to fill.
func Convert[T any](src any) (*T, error) {
	var dst T
	if err := copier.Copy(&dst, src); err != nil {
		return nil, err
	}
	return &dst, nil
}

// StringList decodes a JSON array column. Empty or malformed input yields
// an empty list rather than an error.
func StringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	list, err := utils.FromJSON[[]string](raw)
	if err != nil {
		return []string{}
	}
	return list
}

// JSONString encodes v for a JSON text column. nil encodes to "".
func JSONString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	out, err := utils.ToJSON(v)
	if err != nil {
		return ""
	}
	return out
}
