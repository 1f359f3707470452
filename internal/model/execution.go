package model

import "time"

// Execution statuses. Terminal states are immutable.
const (
	ExecutionStatusRunning   = "running"
	ExecutionStatusSuccess   = "success"
	ExecutionStatusError     = "error"
	ExecutionStatusCancelled = "cancelled"
)

// IsTerminalExecutionStatus reports whether s is a terminal execution status.
func IsTerminalExecutionStatus(s string) bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusError || s == ExecutionStatusCancelled
}

// WorkflowExecution is one orchestrator run. Created when the run starts,
// updated at most once when it finishes.
type WorkflowExecution struct {
	BaseModel
	WorkflowID string `gorm:"size:64;index;not null" json:"workflowId"`
	Status     string `gorm:"size:32;not null;default:'running';index" json:"status"`
	Mode       string `gorm:"size:32" json:"mode"` // manual, trigger, webhook

	StartedAt  time.Time  `gorm:"not null;index" json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Duration   *int64     `json:"duration,omitempty"` // milliseconds

	NodesExecuted int `gorm:"not null;default:0" json:"nodesExecuted"`
	NodesTotal    int `gorm:"not null;default:0" json:"nodesTotal"`

	ErrorMessage string `gorm:"type:text" json:"errorMessage,omitempty"`
	ErrorNode    string `gorm:"size:255" json:"errorNode,omitempty"`

	InputData  string `gorm:"type:text" json:"inputData,omitempty"`  // JSON
	OutputData string `gorm:"type:text" json:"outputData,omitempty"` // JSON
}

// TableName sets the table name.
func (WorkflowExecution) TableName() string {
	return "workflow_executions"
}

// Log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// WorkflowLog is an append-only log entry scoped to one execution.
type WorkflowLog struct {
	BaseModel
	ExecutionID string    `gorm:"size:36;index;not null" json:"executionId"`
	Level       string    `gorm:"size:16;not null" json:"level"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	NodeName    string    `gorm:"size:255" json:"nodeName,omitempty"`
	Data        string    `gorm:"type:text" json:"data,omitempty"` // JSON
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName sets the table name.
func (WorkflowLog) TableName() string {
	return "workflow_logs"
}
