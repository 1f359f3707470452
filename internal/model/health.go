package model

import "time"

// Health statuses.
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"
	HealthStatusDown     = "down"
)

// WorkflowHealthCheck is a point-in-time health snapshot. Append-only.
type WorkflowHealthCheck struct {
	BaseModel
	WorkflowID   string    `gorm:"size:64;index;not null" json:"workflowId"`
	Status       string    `gorm:"size:32;not null" json:"status"`
	ResponseTime int64     `gorm:"not null;default:0" json:"responseTime"` // milliseconds
	Checks       string    `gorm:"type:text" json:"checks,omitempty"`      // JSON map of named sub-check results
	Error        string    `gorm:"type:text" json:"error,omitempty"`
	CheckedAt    time.Time `gorm:"not null;index" json:"checkedAt"`
}

// TableName sets the table name.
func (WorkflowHealthCheck) TableName() string {
	return "workflow_health_checks"
}
