package model

// Environment types.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Environment is a named deployment target for the orchestrator API.
// Exactly one row has IsActive=true; that row is the process-wide current
// selection and survives restarts.
type Environment struct {
	BaseModel
	Type     string `gorm:"size:32;uniqueIndex;not null" json:"type"`
	Name     string `gorm:"size:128;not null" json:"name"`
	ApiURL   string `gorm:"size:512;not null" json:"apiUrl"`
	ApiKey   string `gorm:"size:512" json:"-"`
	IsActive bool   `gorm:"not null;default:false" json:"isActive"`
}

// TableName sets the table name.
func (Environment) TableName() string {
	return "environments"
}
