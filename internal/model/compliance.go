package model

// Anonymization levels.
const (
	AnonLevelNone    = "none"
	AnonLevelPartial = "partial"
	AnonLevelFull    = "full"
)

// AnonymizationConfig is the persisted compliance configuration. Single row.
type AnonymizationConfig struct {
	BaseModel
	Level          string `gorm:"size:32;not null;default:'partial'" json:"level"`
	PreserveFormat bool   `gorm:"not null;default:true" json:"preserveFormat"`
	HashSalt       string `gorm:"size:128" json:"-"`
	Fields         string `gorm:"type:text" json:"fields"` // JSON array of sensitive data types
}

// TableName sets the table name.
func (AnonymizationConfig) TableName() string {
	return "anonymization_configs"
}
