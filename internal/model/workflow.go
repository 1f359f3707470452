package model

import "time"

// Workflow lifecycle statuses.
const (
	WorkflowStatusActive     = "active"
	WorkflowStatusArchived   = "archived"
	WorkflowStatusDeprecated = "deprecated"
)

// WorkflowMetadata is the governance record for one orchestrator workflow.
// One row per distinct workflow; cascade-deleted only on explicit removal.
type WorkflowMetadata struct {
	BaseModel
	WorkflowID    string `gorm:"size:64;uniqueIndex;not null" json:"workflowId"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	Author        string `gorm:"size:128" json:"author"`
	Team          string `gorm:"size:128" json:"team"`
	Status        string `gorm:"size:32;not null;default:'active'" json:"status"`
	Complexity    string `gorm:"size:32" json:"complexity"` // low, medium, high
	Category      string `gorm:"size:64" json:"category"`
	Tags          string `gorm:"type:text" json:"tags"`         // JSON array
	Dependencies  string `gorm:"type:text" json:"dependencies"` // JSON array of workflow ids
	Documentation string `gorm:"type:text" json:"documentation"`

	// Current active version string, kept in sync by version activation.
	Version string `gorm:"size:64" json:"version"`

	// Execution statistics maintained by the execution logic.
	ExecutionCount int64      `gorm:"not null;default:0" json:"executionCount"`
	LastExecutedAt *time.Time `json:"lastExecutedAt,omitempty"`
}

// TableName sets the table name.
func (WorkflowMetadata) TableName() string {
	return "workflow_metadata"
}
