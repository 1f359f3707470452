package logic

import (
	"errors"

	"flowpulse/internal/alerting"
	"flowpulse/internal/model"
	"flowpulse/internal/types"

	"gorm.io/gorm"
)

// AlertLogic exposes alerts and their per-workflow configuration.
type AlertLogic struct {
	db     *gorm.DB
	engine *alerting.Engine
}

// NewAlertLogic creates the alert logic.
func NewAlertLogic(db *gorm.DB, engine *alerting.Engine) *AlertLogic {
	return &AlertLogic{db: db, engine: engine}
}

func validAlertType(t string) bool {
	switch t {
	case model.AlertTypeError, model.AlertTypeWarning,
		model.AlertTypeSlowExecution, model.AlertTypeHealth:
		return true
	}
	return false
}

// Create raises an alert manually.
func (l *AlertLogic) Create(req *types.CreateAlertRequest) (*model.WorkflowAlert, error) {
	if !validAlertType(req.Type) {
		return nil, ErrInvalidStatus
	}
	alert := &model.WorkflowAlert{
		WorkflowID:  req.WorkflowID,
		ExecutionID: req.ExecutionID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Status:      model.AlertStatusPending,
	}
	if err := l.db.Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// Get loads one alert.
func (l *AlertLogic) Get(id string) (*model.WorkflowAlert, error) {
	var alert model.WorkflowAlert
	if err := l.db.First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, alerting.ErrAlertNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// List returns filtered alerts, newest first.
func (l *AlertLogic) List(req *types.ListAlertsRequest) ([]model.WorkflowAlert, int64, error) {
	var alerts []model.WorkflowAlert
	var total int64

	query := l.db.Model(&model.WorkflowAlert{})
	if req.WorkflowID != "" {
		query = query.Where("workflow_id = ?", req.WorkflowID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}

	query.Count(&total)

	if req.Page > 0 && req.PageSize > 0 {
		query = query.Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize)
	}

	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// Send dispatches one alert to its configured channels.
func (l *AlertLogic) Send(id string) (*alerting.DispatchResult, error) {
	return l.engine.Dispatch(id)
}

// Acknowledge moves an alert into its terminal state.
func (l *AlertLogic) Acknowledge(id, by string) (*model.WorkflowAlert, error) {
	return l.engine.Acknowledge(id, by)
}

// GetConfig returns a workflow's alert configuration.
func (l *AlertLogic) GetConfig(workflowID string) (*model.AlertConfiguration, error) {
	var cfg model.AlertConfiguration
	if err := l.db.First(&cfg, "workflow_id = ?", workflowID).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpsertConfig creates or replaces a workflow's alert configuration.
func (l *AlertLogic) UpsertConfig(workflowID string, req *types.UpsertAlertConfigRequest) (*model.AlertConfiguration, error) {
	values := map[string]any{
		"slack_enabled":            req.SlackEnabled,
		"slack_webhook_url":        req.SlackWebhookURL,
		"slack_channel":            req.SlackChannel,
		"email_enabled":            req.EmailEnabled,
		"email_recipients":         types.JSONString(req.EmailRecipients),
		"on_error":                 req.OnError,
		"on_warning":               req.OnWarning,
		"on_slow_execution":        req.OnSlowExecution,
		"slow_execution_threshold": req.SlowExecutionThreshold,
		"coalesce_window":          req.CoalesceWindow,
	}

	var cfg model.AlertConfiguration
	err := l.db.First(&cfg, "workflow_id = ?", workflowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = model.AlertConfiguration{
			WorkflowID:             workflowID,
			SlackEnabled:           req.SlackEnabled,
			SlackWebhookURL:        req.SlackWebhookURL,
			SlackChannel:           req.SlackChannel,
			EmailEnabled:           req.EmailEnabled,
			EmailRecipients:        types.JSONString(req.EmailRecipients),
			OnError:                req.OnError,
			OnWarning:              req.OnWarning,
			OnSlowExecution:        req.OnSlowExecution,
			SlowExecutionThreshold: req.SlowExecutionThreshold,
			CoalesceWindow:         req.CoalesceWindow,
		}
		if err := l.db.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	} else if err != nil {
		return nil, err
	}

	if err := l.db.Model(&cfg).Updates(values).Error; err != nil {
		return nil, err
	}
	return l.GetConfig(workflowID)
}

// DeleteConfig removes a workflow's alert configuration.
func (l *AlertLogic) DeleteConfig(workflowID string) error {
	var cfg model.AlertConfiguration
	if err := l.db.First(&cfg, "workflow_id = ?", workflowID).Error; err != nil {
		return err
	}
	return l.db.Delete(&cfg).Error
}
