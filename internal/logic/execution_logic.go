package logic

import (
	"errors"
	"time"

	"flowpulse/internal/alerting"
	"flowpulse/internal/model"
	"flowpulse/internal/types"
	"flowpulse/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExecutionLogic records orchestrator runs and their logs. Sensitive payload
// fields are anonymized before persistence; executions finishing with an
// error automatically raise an alert.
type ExecutionLogic struct {
	db         *gorm.DB
	alerts     *alerting.Engine
	compliance *ComplianceLogic
}

// NewExecutionLogic creates the execution logic.
func NewExecutionLogic(db *gorm.DB, alerts *alerting.Engine, compliance *ComplianceLogic) *ExecutionLogic {
	return &ExecutionLogic{db: db, alerts: alerts, compliance: compliance}
}

func validExecutionStatus(s string) bool {
	switch s {
	case model.ExecutionStatusRunning, model.ExecutionStatusSuccess,
		model.ExecutionStatusError, model.ExecutionStatusCancelled:
		return true
	}
	return false
}

// Create records a new run. Terminal create payloads (imported history) are
// evaluated for alerts immediately.
func (l *ExecutionLogic) Create(req *types.CreateExecutionRequest) (*model.WorkflowExecution, error) {
	status := req.Status
	if status == "" {
		status = model.ExecutionStatusRunning
	}
	if !validExecutionStatus(status) {
		return nil, ErrInvalidStatus
	}

	startedAt := time.Now()
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	exec := &model.WorkflowExecution{
		WorkflowID:    req.WorkflowID,
		Status:        status,
		Mode:          req.Mode,
		StartedAt:     startedAt,
		FinishedAt:    req.FinishedAt,
		Duration:      req.Duration,
		NodesExecuted: req.NodesExecuted,
		NodesTotal:    req.NodesTotal,
		ErrorMessage:  req.ErrorMessage,
		ErrorNode:     req.ErrorNode,
		InputData:     types.JSONString(req.InputData),
		OutputData:    types.JSONString(req.OutputData),
	}
	if exec.Duration == nil && exec.FinishedAt != nil {
		ms := exec.FinishedAt.Sub(exec.StartedAt).Milliseconds()
		exec.Duration = &ms
	}
	l.compliance.Anonymizer().AnonymizeExecution(exec)

	if err := l.db.Create(exec).Error; err != nil {
		return nil, err
	}

	l.touchMetadata(exec.WorkflowID, startedAt)
	if model.IsTerminalExecutionStatus(exec.Status) {
		l.evaluateAlert(exec)
	}
	return exec, nil
}

// Update finishes a run. Terminal executions are immutable.
func (l *ExecutionLogic) Update(id string, req *types.UpdateExecutionRequest) (*model.WorkflowExecution, error) {
	exec, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if model.IsTerminalExecutionStatus(exec.Status) {
		return nil, ErrExecutionFinished
	}
	if !validExecutionStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	exec.Status = req.Status
	if req.FinishedAt != nil {
		exec.FinishedAt = req.FinishedAt
	} else if model.IsTerminalExecutionStatus(req.Status) {
		now := time.Now()
		exec.FinishedAt = &now
	}
	if req.Duration != nil {
		exec.Duration = req.Duration
	} else if exec.FinishedAt != nil && exec.Duration == nil {
		ms := exec.FinishedAt.Sub(exec.StartedAt).Milliseconds()
		exec.Duration = &ms
	}
	if req.NodesExecuted != nil {
		exec.NodesExecuted = *req.NodesExecuted
	}
	if req.NodesTotal != nil {
		exec.NodesTotal = *req.NodesTotal
	}
	if req.ErrorMessage != "" {
		exec.ErrorMessage = req.ErrorMessage
	}
	if req.ErrorNode != "" {
		exec.ErrorNode = req.ErrorNode
	}
	if req.OutputData != nil {
		exec.OutputData = types.JSONString(req.OutputData)
	}
	l.compliance.Anonymizer().AnonymizeExecution(exec)

	if err := l.db.Save(exec).Error; err != nil {
		return nil, err
	}

	if model.IsTerminalExecutionStatus(exec.Status) {
		l.evaluateAlert(exec)
	}
	return exec, nil
}

// Get loads one execution.
func (l *ExecutionLogic) Get(id string) (*model.WorkflowExecution, error) {
	var exec model.WorkflowExecution
	if err := l.db.First(&exec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExecutionNotFound
		}
		return nil, err
	}
	return &exec, nil
}

// List returns filtered executions, newest first.
func (l *ExecutionLogic) List(req *types.ListExecutionsRequest) ([]model.WorkflowExecution, int64, error) {
	var executions []model.WorkflowExecution
	var total int64

	query := l.db.Model(&model.WorkflowExecution{})
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

	if err := query.Order("started_at DESC").Find(&executions).Error; err != nil {
		return nil, 0, err
	}
	return executions, total, nil
}

// History returns every execution for one workflow, oldest first, for the
// analytics engine.
func (l *ExecutionLogic) History(workflowID string) ([]model.WorkflowExecution, error) {
	var executions []model.WorkflowExecution
	if err := l.db.Where("workflow_id = ?", workflowID).
		Order("started_at ASC").
		Find(&executions).Error; err != nil {
		return nil, err
	}
	return executions, nil
}

// AppendLog appends one anonymized log entry to an execution.
func (l *ExecutionLogic) AppendLog(executionID string, req *types.AppendLogRequest) (*model.WorkflowLog, error) {
	if _, err := l.Get(executionID); err != nil {
		return nil, err
	}

	level := req.Level
	if level == "" {
		level = model.LogLevelInfo
	}
	timestamp := time.Now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	entry := &model.WorkflowLog{
		ExecutionID: executionID,
		Level:       level,
		Message:     req.Message,
		NodeName:    req.NodeName,
		Data:        types.JSONString(req.Data),
		Timestamp:   timestamp,
	}
	l.compliance.Anonymizer().AnonymizeLog(entry)

	if err := l.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListLogs returns an execution's log entries in order.
func (l *ExecutionLogic) ListLogs(executionID string) ([]model.WorkflowLog, error) {
	if _, err := l.Get(executionID); err != nil {
		return nil, err
	}
	var logs []model.WorkflowLog
	if err := l.db.Where("execution_id = ?", executionID).
		Order("timestamp ASC, created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// touchMetadata maintains the execution counters on the metadata row.
func (l *ExecutionLogic) touchMetadata(workflowID string, executedAt time.Time) {
	err := l.db.Model(&model.WorkflowMetadata{}).
		Where("workflow_id = ?", workflowID).
		Updates(map[string]any{
			"execution_count":  gorm.Expr("execution_count + 1"),
			"last_executed_at": executedAt,
		}).Error
	if err != nil {
		logger.Warn("metadata execution counters not updated",
			zap.String("workflowId", workflowID),
			zap.Error(err),
		)
	}
}

// alertConfig loads the workflow's alert configuration, defaulting to
// error-only triggers when none is stored.
func (l *ExecutionLogic) alertConfig(workflowID string) *model.AlertConfiguration {
	var cfg model.AlertConfiguration
	err := l.db.First(&cfg, "workflow_id = ?", workflowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.AlertConfiguration{WorkflowID: workflowID, OnError: true}
	}
	if err != nil {
		logger.Warn("alert configuration lookup failed",
			zap.String("workflowId", workflowID),
			zap.Error(err),
		)
		return &model.AlertConfiguration{WorkflowID: workflowID, OnError: true}
	}
	return &cfg
}

// evaluateAlert raises an alert for a qualifying terminal execution. Alert
// failures never fail the execution write.
func (l *ExecutionLogic) evaluateAlert(exec *model.WorkflowExecution) {
	alert, err := l.alerts.EvaluateExecution(exec, l.alertConfig(exec.WorkflowID))
	if err != nil {
		logger.Error("alert evaluation failed",
			zap.String("workflowId", exec.WorkflowID),
			zap.String("executionId", exec.ID),
			zap.Error(err),
		)
		return
	}
	if alert != nil {
		logger.Info("alert raised",
			zap.String("workflowId", exec.WorkflowID),
			zap.String("alertId", alert.ID),
			zap.String("type", alert.Type),
		)
	}
}
