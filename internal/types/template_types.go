package types

// CreateTemplateRequest creates a reusable template.
type CreateTemplateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Definition  any    `json:"definition" validate:"required"`
}

// UpdateTemplateRequest mutates a template. Nil fields are untouched.
type UpdateTemplateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Definition  any     `json:"definition"`
}

// ListTemplatesRequest filters the template list.
type ListTemplatesRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// RateTemplateRequest records one rating between 1 and 5.
type RateTemplateRequest struct {
	Rating float64 `json:"rating" validate:"required"`
}
