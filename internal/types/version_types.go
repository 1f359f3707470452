package types

// CreateVersionRequest snapshots a workflow definition as a new version.
// The definition is committed to the definition repository first; the
// version row records the resulting commit hash.
type CreateVersionRequest struct {
	WorkflowID      string `json:"workflowId" validate:"required"`
	Version         string `json:"version" validate:"required"`
	Definition      any    `json:"definition" validate:"required"`
	Changelog       string `json:"changelog"`
	BreakingChanges string `json:"breakingChanges"`
	ChangeType      string `json:"changeType"`
	Author          string `json:"author"`
	Email           string `json:"email"`
	Branch          string `json:"branch"`
}

// ListVersionsRequest filters the version list.
type ListVersionsRequest struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	WorkflowID string `json:"workflowId"`
	IsActive   *bool  `json:"isActive"`
}

// ActivateVersionRequest activates one version.
type ActivateVersionRequest struct {
	DeployedBy string `json:"deployedBy"`
}
