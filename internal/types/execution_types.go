package types

import "time"

// CreateExecutionRequest records the start (or a completed import) of a run.
type CreateExecutionRequest struct {
	WorkflowID    string     `json:"workflowId" validate:"required"`
	Status        string     `json:"status"`
	Mode          string     `json:"mode"`
	StartedAt     *time.Time `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt"`
	Duration      *int64     `json:"duration"`
	NodesExecuted int        `json:"nodesExecuted"`
	NodesTotal    int        `json:"nodesTotal"`
	ErrorMessage  string     `json:"errorMessage"`
	ErrorNode     string     `json:"errorNode"`
	InputData     any        `json:"inputData"`
	OutputData    any        `json:"outputData"`
}

// UpdateExecutionRequest finishes a run. Terminal executions reject updates.
type UpdateExecutionRequest struct {
	Status        string     `json:"status" validate:"required"`
	FinishedAt    *time.Time `json:"finishedAt"`
	Duration      *int64     `json:"duration"`
	NodesExecuted *int       `json:"nodesExecuted"`
	NodesTotal    *int       `json:"nodesTotal"`
	ErrorMessage  string     `json:"errorMessage"`
	ErrorNode     string     `json:"errorNode"`
	OutputData    any        `json:"outputData"`
}

// ListExecutionsRequest filters the execution list.
type ListExecutionsRequest struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
}

// AppendLogRequest appends one log entry to an execution.
type AppendLogRequest struct {
	Level     string     `json:"level"`
	Message   string     `json:"message" validate:"required"`
	NodeName  string     `json:"nodeName"`
	Data      any        `json:"data"`
	Timestamp *time.Time `json:"timestamp"`
}
