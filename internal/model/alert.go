package model

import "time"

// Alert statuses. Lifecycle: pending -> sent|failed -> acknowledged.
const (
	AlertStatusPending      = "pending"
	AlertStatusSent         = "sent"
	AlertStatusFailed       = "failed"
	AlertStatusAcknowledged = "acknowledged"
)

// Alert types.
const (
	AlertTypeError         = "error"
	AlertTypeWarning       = "warning"
	AlertTypeSlowExecution = "slow_execution"
	AlertTypeHealth        = "health"
)

// WorkflowAlert is raised from a qualifying execution or health-check event.
type WorkflowAlert struct {
	BaseModel
	WorkflowID  string `gorm:"size:64;index;not null" json:"workflowId"`
	ExecutionID string `gorm:"size:36;index" json:"executionId,omitempty"`
	Type        string `gorm:"size:32;not null" json:"type"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Message     string `gorm:"type:text" json:"message"`
	Status      string `gorm:"size:32;not null;default:'pending';index" json:"status"`

	SentAt         *time.Time `json:"sentAt,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string     `gorm:"size:128" json:"acknowledgedBy,omitempty"`

	// Per-channel delivery outcome of the last dispatch, JSON array.
	ChannelResults string `gorm:"type:text" json:"channelResults,omitempty"`
}

// TableName sets the table name.
func (WorkflowAlert) TableName() string {
	return "workflow_alerts"
}

// AlertConfiguration declares channels and trigger predicates per workflow.
type AlertConfiguration struct {
	BaseModel
	WorkflowID string `gorm:"size:64;uniqueIndex;not null" json:"workflowId"`

	SlackEnabled    bool   `gorm:"not null;default:false" json:"slackEnabled"`
	SlackWebhookURL string `gorm:"size:512" json:"slackWebhookUrl,omitempty"`
	SlackChannel    string `gorm:"size:128" json:"slackChannel,omitempty"`

	EmailEnabled    bool   `gorm:"not null;default:false" json:"emailEnabled"`
	EmailRecipients string `gorm:"type:text" json:"emailRecipients,omitempty"` // JSON array

	OnError                bool  `gorm:"not null;default:true" json:"onError"`
	OnWarning              bool  `gorm:"not null;default:false" json:"onWarning"`
	OnSlowExecution        bool  `gorm:"not null;default:false" json:"onSlowExecution"`
	SlowExecutionThreshold int64 `gorm:"not null;default:0" json:"slowExecutionThreshold"` // milliseconds

	// CoalesceWindow suppresses duplicate alerts of the same type for the
	// workflow within this many seconds. 0 disables suppression.
	CoalesceWindow int64 `gorm:"not null;default:0" json:"coalesceWindow"`
}

// TableName sets the table name.
func (AlertConfiguration) TableName() string {
	return "alert_configurations"
}
