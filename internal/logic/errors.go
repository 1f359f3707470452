package logic

import "errors"

// Invariant and validation errors surfaced to the HTTP layer.
var (
	ErrWorkflowExists        = errors.New("workflow already registered")
	ErrWorkflowNotFound      = errors.New("workflow not found")
	ErrVersionExists         = errors.New("version already exists for this workflow")
	ErrVersionNotFound       = errors.New("version not found")
	ErrActiveVersionDelete   = errors.New("cannot delete the active version")
	ErrExecutionNotFound     = errors.New("execution not found")
	ErrExecutionFinished     = errors.New("execution is in a terminal state and cannot be updated")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrNoExecutions          = errors.New("no executions recorded for this workflow")
	ErrTemplateNotFound      = errors.New("template not found")
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
	ErrInvalidAnonymizeLevel = errors.New("invalid anonymization level")
)

// OrphanedCommitError reports a git commit whose version row could not be
// written. The hash lets an operator complete or discard the commit.
type OrphanedCommitError struct {
	Hash string
	Err  error
}

func (e *OrphanedCommitError) Error() string {
	return "version record write failed after commit " + e.Hash + ": " + e.Err.Error()
}

func (e *OrphanedCommitError) Unwrap() error {
	return e.Err
}
