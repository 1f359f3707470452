package logic

import (
	"errors"
	"time"

	"flowpulse/internal/alerting"
	"flowpulse/internal/model"
	"flowpulse/internal/orchestrator"
	"flowpulse/internal/types"
	"flowpulse/pkg/logger"
	"flowpulse/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthLogic probes the orchestrator for one workflow and persists the
// snapshot. An unreachable or timed-out orchestrator is a down result, not
// an error.
type HealthLogic struct {
	db     *gorm.DB
	orch   *orchestrator.Client
	alerts *alerting.Engine
}

// NewHealthLogic creates the health logic.
func NewHealthLogic(db *gorm.DB, orch *orchestrator.Client, alerts *alerting.Engine) *HealthLogic {
	return &HealthLogic{db: db, orch: orch, alerts: alerts}
}

// Run performs one health check, persists it, and evaluates alert rules.
func (h *HealthLogic) Run(workflowID string) (*model.WorkflowHealthCheck, error) {
	var meta model.WorkflowMetadata
	if err := h.db.First(&meta, "workflow_id = ?", workflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}

	checks := map[string]bool{}
	start := time.Now()
	wf, _, err := h.orch.GetWorkflow(workflowID)
	responseTime := time.Since(start).Milliseconds()

	check := &model.WorkflowHealthCheck{
		WorkflowID:   workflowID,
		ResponseTime: responseTime,
		CheckedAt:    time.Now(),
	}

	switch {
	case errors.Is(err, orchestrator.ErrWorkflowNotFound):
		checks["api_reachable"] = true
		checks["workflow_present"] = false
		check.Status = model.HealthStatusDown
		check.Error = err.Error()
	case err != nil:
		checks["api_reachable"] = false
		checks["workflow_present"] = false
		check.Status = model.HealthStatusDown
		check.Error = err.Error()
	default:
		checks["api_reachable"] = true
		checks["workflow_present"] = true
		checks["workflow_active"] = wf.Active
		if wf.Active {
			check.Status = model.HealthStatusHealthy
		} else {
			check.Status = model.HealthStatusDegraded
			check.Error = "workflow is present but not active in the orchestrator"
		}
	}

	if encoded, err := utils.ToJSON(checks); err == nil {
		check.Checks = encoded
	}

	if err := h.db.Create(check).Error; err != nil {
		return nil, err
	}

	h.evaluateAlert(check)
	return check, nil
}

// List returns filtered health checks, newest first.
func (h *HealthLogic) List(req *types.ListHealthChecksRequest) ([]model.WorkflowHealthCheck, int64, error) {
	var items []model.WorkflowHealthCheck
	var total int64

	query := h.db.Model(&model.WorkflowHealthCheck{})
	if req.WorkflowID != "" {
		query = query.Where("workflow_id = ?", req.WorkflowID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	if req.Page > 0 && req.PageSize > 0 {
		query = query.Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize)
	}

	if err := query.Order("checked_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (h *HealthLogic) evaluateAlert(check *model.WorkflowHealthCheck) {
	var cfg model.AlertConfiguration
	err := h.db.First(&cfg, "workflow_id = ?", check.WorkflowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = model.AlertConfiguration{WorkflowID: check.WorkflowID, OnError: true}
	} else if err != nil {
		logger.Warn("alert configuration lookup failed",
			zap.String("workflowId", check.WorkflowID),
			zap.Error(err),
		)
		return
	}

	if _, err := h.alerts.EvaluateHealthCheck(check, &cfg); err != nil {
		logger.Error("health alert evaluation failed",
			zap.String("workflowId", check.WorkflowID),
			zap.Error(err),
		)
	}
}
