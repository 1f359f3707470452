package model

import "time"

// Version change types.
const (
	ChangeTypeFeature  = "feature"
	ChangeTypeBugfix   = "bugfix"
	ChangeTypeHotfix   = "hotfix"
	ChangeTypeRefactor = "refactor"
)

// WorkflowVersion is an immutable snapshot of a workflow definition plus its
// source-control provenance. Only IsActive/DeployedAt/DeployedBy are updated
// in place; at most one version per workflow is active at a time.
type WorkflowVersion struct {
	BaseModel
	WorkflowID      string `gorm:"size:64;index;not null" json:"workflowId"`
	Version         string `gorm:"size:64;not null" json:"version"`
	Definition      string `gorm:"type:text;not null" json:"definition"` // JSON
	CommitHash      string `gorm:"size:40" json:"commitHash"`
	Branch          string `gorm:"size:128" json:"branch"`
	Tag             string `gorm:"size:128" json:"tag"`
	Author          string `gorm:"size:128" json:"author"`
	Changelog       string `gorm:"type:text" json:"changelog"`
	BreakingChanges string `gorm:"type:text" json:"breakingChanges"`
	ChangeType      string `gorm:"size:32" json:"changeType"`

	IsActive   bool       `gorm:"not null;default:false;index" json:"isActive"`
	DeployedAt *time.Time `json:"deployedAt,omitempty"`
	DeployedBy string     `gorm:"size:128" json:"deployedBy"`
}

// TableName sets the table name.
func (WorkflowVersion) TableName() string {
	return "workflow_versions"
}
