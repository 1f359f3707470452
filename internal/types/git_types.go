package types

// CommitWorkflowRequest commits a definition without creating a version row.
type CommitWorkflowRequest struct {
	WorkflowID string `json:"workflowId" validate:"required"`
	Definition any    `json:"definition" validate:"required"`
	Message    string `json:"message"`
	Author     string `json:"author"`
	Email      string `json:"email"`
	Branch     string `json:"branch"`
}

// CreateBranchRequest creates or checks out a branch.
type CreateBranchRequest struct {
	Name string `json:"name" validate:"required"`
}

// MergeRequest fast-forwards target to source.
type MergeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target"`
}

// CreateTagRequest tags a commit.
type CreateTagRequest struct {
	Name    string `json:"name" validate:"required"`
	Message string `json:"message"`
	Commit  string `json:"commit"`
}

// RollbackRequest restores a workflow definition to an earlier commit and
// records the restored content as a new hotfix version.
type RollbackRequest struct {
	WorkflowID string `json:"workflowId" validate:"required"`
	Hash       string `json:"hash" validate:"required"`
	Version    string `json:"version"`
	DeployedBy string `json:"deployedBy"`
}

// BranchesInfo is the branch listing response.
type BranchesInfo struct {
	Current  string   `json:"current"`
	Branches []string `json:"branches"`
}

// DiffInfo is the diff response.
type DiffInfo struct {
	WorkflowID string `json:"workflowId"`
	CommitA    string `json:"commitA"`
	CommitB    string `json:"commitB"`
	Diff       string `json:"diff"`
}
