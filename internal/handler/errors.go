package handler

import (
	"errors"

	"flowpulse/internal/alerting"
	"flowpulse/internal/environment"
	"flowpulse/internal/gitstore"
	"flowpulse/internal/logic"
	"flowpulse/internal/orchestrator"
	"flowpulse/pkg/logger"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// fail maps a logic error onto the HTTP error taxonomy.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, logic.ErrWorkflowNotFound),
		errors.Is(err, logic.ErrVersionNotFound),
		errors.Is(err, logic.ErrExecutionNotFound),
		errors.Is(err, logic.ErrTemplateNotFound),
		errors.Is(err, logic.ErrNoExecutions),
		errors.Is(err, alerting.ErrAlertNotFound),
		errors.Is(err, environment.ErrEnvironmentNotFound),
		errors.Is(err, orchestrator.ErrWorkflowNotFound),
		errors.Is(err, gitstore.ErrCommitNotFound),
		errors.Is(err, gitstore.ErrFileNotFound),
		errors.Is(err, gitstore.ErrBranchNotFound):
		return response.NotFound(c, err.Error())

	case errors.Is(err, logic.ErrWorkflowExists),
		errors.Is(err, logic.ErrVersionExists),
		errors.Is(err, logic.ErrActiveVersionDelete),
		errors.Is(err, logic.ErrExecutionFinished),
		errors.Is(err, alerting.ErrAlreadyAcknowledged),
		errors.Is(err, environment.ErrProductionConfirmRequired),
		errors.Is(err, gitstore.ErrDeleteCurrentBranch),
		errors.Is(err, gitstore.ErrBranchNotMerged),
		errors.Is(err, gitstore.ErrMergeNotFastForward):
		return response.Conflict(c, err.Error())

	case errors.Is(err, logic.ErrInvalidStatus),
		errors.Is(err, logic.ErrInvalidRating),
		errors.Is(err, logic.ErrInvalidAnonymizeLevel),
		errors.Is(err, environment.ErrInvalidEnvironmentType),
		errors.Is(err, alerting.ErrNoChannelsEnabled):
		return response.BadRequest(c, err.Error())
	}

	var orphaned *logic.OrphanedCommitError
	if errors.As(err, &orphaned) {
		logger.Error("orphaned definition commit", zap.String("hash", orphaned.Hash), zap.Error(err))
		return response.ServerError(c, err.Error())
	}

	logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return response.ServerError(c, "")
}
