package types

// ListHealthChecksRequest filters the health-check history.
type ListHealthChecksRequest struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
}
