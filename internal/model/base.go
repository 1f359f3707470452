package model

import (
	"time"

	"flowpulse/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is embedded by every entity. Primary keys are UUID strings.
type BaseModel struct {
	ID        string         `gorm:"primarykey;size:36" json:"id"`
	CreatedAt types.DateTime `json:"createdAt"`
	UpdatedAt types.DateTime `json:"updatedAt"`
}

// BeforeCreate fills the ID and timestamps.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := types.NewDateTime(time.Now())
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate refreshes the update timestamp.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = types.NewDateTime(time.Now())
	return nil
}

// All returns every entity for AutoMigrate.
func All() []any {
	return []any{
		&WorkflowMetadata{},
		&WorkflowVersion{},
		&WorkflowExecution{},
		&WorkflowLog{},
		&WorkflowAlert{},
		&AlertConfiguration{},
		&WorkflowHealthCheck{},
		&WorkflowMetrics{},
		&WorkflowTemplate{},
		&Environment{},
		&AnonymizationConfig{},
	}
}
