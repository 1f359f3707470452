package model

// WorkflowTemplate is a reusable, versionless workflow definition.
type WorkflowTemplate struct {
	BaseModel
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Category    string  `gorm:"size:64" json:"category"`
	Definition  string  `gorm:"type:text;not null" json:"definition"` // JSON
	UseCount    int64   `gorm:"not null;default:0" json:"useCount"`
	Rating      float64 `gorm:"not null;default:0" json:"rating"`
	RatingCount int64   `gorm:"not null;default:0" json:"ratingCount"`
}

// TableName sets the table name.
func (WorkflowTemplate) TableName() string {
	return "workflow_templates"
}
