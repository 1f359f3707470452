package model

import "time"

// WorkflowMetrics is the current rolling aggregate for one workflow,
// recomputed on demand from the execution history and overwritten in place.
type WorkflowMetrics struct {
	BaseModel
	WorkflowID  string    `gorm:"size:64;uniqueIndex;not null" json:"workflowId"`
	PeriodStart time.Time `gorm:"not null" json:"periodStart"`
	PeriodEnd   time.Time `gorm:"not null" json:"periodEnd"`

	TotalExecutions int64 `gorm:"not null;default:0" json:"totalExecutions"`
	SuccessCount    int64 `gorm:"not null;default:0" json:"successCount"`
	FailureCount    int64 `gorm:"not null;default:0" json:"failureCount"`

	AvgDuration *float64 `json:"avgDuration,omitempty"` // milliseconds
	P50Duration *int64   `json:"p50Duration,omitempty"`
	P95Duration *int64   `json:"p95Duration,omitempty"`
	P99Duration *int64   `json:"p99Duration,omitempty"`
	Uptime      *float64 `json:"uptime,omitempty"` // percent

	ComputedAt time.Time `gorm:"not null" json:"computedAt"`
}

// TableName sets the table name.
func (WorkflowMetrics) TableName() string {
	return "workflow_metrics"
}
