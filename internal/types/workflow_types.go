package types

import "time"

// CreateWorkflowRequest registers workflow metadata.
type CreateWorkflowRequest struct {
	WorkflowID    string   `json:"workflowId" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Author        string   `json:"author"`
	Team          string   `json:"team"`
	Status        string   `json:"status"`
	Complexity    string   `json:"complexity"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Dependencies  []string `json:"dependencies"`
	Documentation string   `json:"documentation"`
}

// UpdateWorkflowRequest mutates workflow metadata. Nil fields are untouched.
type UpdateWorkflowRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Author        *string   `json:"author"`
	Team          *string   `json:"team"`
	Status        *string   `json:"status"`
	Complexity    *string   `json:"complexity"`
	Category      *string   `json:"category"`
	Tags          *[]string `json:"tags"`
	Dependencies  *[]string `json:"dependencies"`
	Documentation *string   `json:"documentation"`
}

// ListWorkflowsRequest filters the metadata list.
type ListWorkflowsRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Category string `json:"category"`
	Team     string `json:"team"`
}

// WorkflowInfo is the metadata response shape with decoded list fields.
type WorkflowInfo struct {
	ID             string     `json:"id"`
	WorkflowID     string     `json:"workflowId"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Author         string     `json:"author"`
	Team           string     `json:"team"`
	Status         string     `json:"status"`
	Complexity     string     `json:"complexity"`
	Category       string     `json:"category"`
	Tags           []string   `json:"tags"`
	Dependencies   []string   `json:"dependencies"`
	Documentation  string     `json:"documentation"`
	Version        string     `json:"version"`
	ExecutionCount int64      `json:"executionCount"`
	LastExecutedAt *time.Time `json:"lastExecutedAt,omitempty"`
	CreatedAt      DateTime   `json:"createdAt"`
	UpdatedAt      DateTime   `json:"updatedAt"`
}

// SyncResult reports one orchestrator synchronization run.
type SyncResult struct {
	Environment string `json:"environment"`
	Fetched     int    `json:"fetched"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
}
