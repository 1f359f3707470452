// Package alerting decides when an event is alert-worthy and delivers it
// through the configured channels, tracking delivery state.
package alerting

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"flowpulse/internal/config"
	"flowpulse/internal/model"
	"flowpulse/pkg/logger"
	"flowpulse/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrAlertNotFound is returned when the alert id does not exist.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrAlreadyAcknowledged is returned when dispatching or re-acknowledging
	// an acknowledged alert.
	ErrAlreadyAcknowledged = errors.New("alert is already acknowledged")
	// ErrNoChannelsEnabled is returned when the workflow's configuration
	// enables no delivery channel.
	ErrNoChannelsEnabled = errors.New("no alert channels enabled")
)

// ChannelResult is the delivery outcome for one channel.
type ChannelResult struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DispatchResult summarizes one dispatch attempt. Partial channel success
// still counts as sent.
type DispatchResult struct {
	AlertID  string          `json:"alertId"`
	Success  bool            `json:"success"`
	Status   string          `json:"status"`
	Channels []ChannelResult `json:"channels"`
}

// Engine evaluates alert predicates and dispatches alerts.
type Engine struct {
	db    *gorm.DB
	cfg   config.AlertingConfig
	slack *SlackNotifier
}

// NewEngine builds an alert engine.
func NewEngine(db *gorm.DB, cfg config.AlertingConfig) *Engine {
	return &Engine{
		db:    db,
		cfg:   cfg,
		slack: NewSlackNotifier(cfg.DispatchTimeout),
	}
}

// coalesced reports whether an unacknowledged alert of the same type exists
// for the workflow within the suppression window.
func (e *Engine) coalesced(workflowID, alertType string, windowSeconds int64) bool {
	window := time.Duration(windowSeconds) * time.Second
	if window <= 0 {
		window = e.cfg.CoalesceWindow
	}
	if window <= 0 {
		return false
	}

	var count int64
	since := time.Now().Add(-window)
	e.db.Model(&model.WorkflowAlert{}).
		Where("workflow_id = ? AND type = ? AND status <> ? AND created_at >= ?",
			workflowID, alertType, model.AlertStatusAcknowledged, since).
		Count(&count)
	return count > 0
}

// EvaluateExecution applies the workflow's trigger predicates to a finished
// execution and creates a pending alert when one matches. Returns nil when
// nothing qualifies.
func (e *Engine) EvaluateExecution(exec *model.WorkflowExecution, cfg *model.AlertConfiguration) (*model.WorkflowAlert, error) {
	if exec == nil || cfg == nil {
		return nil, nil
	}

	var alertType, title, message string
	switch {
	case exec.Status == model.ExecutionStatusError && cfg.OnError:
		alertType = model.AlertTypeError
		title = "Workflow execution failed"
		message = exec.ErrorMessage
		if message == "" {
			message = "execution finished with status error"
		}
	case cfg.OnSlowExecution && cfg.SlowExecutionThreshold > 0 &&
		exec.Duration != nil && *exec.Duration > cfg.SlowExecutionThreshold:
		alertType = model.AlertTypeSlowExecution
		title = "Workflow execution was slow"
		message = fmt.Sprintf("execution took %dms (threshold %dms)", *exec.Duration, cfg.SlowExecutionThreshold)
	default:
		return nil, nil
	}

	if e.coalesced(exec.WorkflowID, alertType, cfg.CoalesceWindow) {
		logger.Debug("alert coalesced",
			zap.String("workflowId", exec.WorkflowID),
			zap.String("type", alertType),
		)
		return nil, nil
	}

	alert := &model.WorkflowAlert{
		WorkflowID:  exec.WorkflowID,
		ExecutionID: exec.ID,
		Type:        alertType,
		Title:       title,
		Message:     message,
		Status:      model.AlertStatusPending,
	}
	if err := e.db.Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// EvaluateHealthCheck raises an alert for degraded or down health snapshots.
func (e *Engine) EvaluateHealthCheck(check *model.WorkflowHealthCheck, cfg *model.AlertConfiguration) (*model.WorkflowAlert, error) {
	if check == nil || cfg == nil {
		return nil, nil
	}

	var alertType, title string
	switch check.Status {
	case model.HealthStatusDown:
		if !cfg.OnError {
			return nil, nil
		}
		alertType = model.AlertTypeHealth
		title = "Workflow is down"
	case model.HealthStatusDegraded:
		if !cfg.OnWarning {
			return nil, nil
		}
		alertType = model.AlertTypeWarning
		title = "Workflow health degraded"
	default:
		return nil, nil
	}

	if e.coalesced(check.WorkflowID, alertType, cfg.CoalesceWindow) {
		return nil, nil
	}

	message := check.Error
	if message == "" {
		message = fmt.Sprintf("health check reported %s (%dms)", check.Status, check.ResponseTime)
	}

	alert := &model.WorkflowAlert{
		WorkflowID: check.WorkflowID,
		Type:       alertType,
		Title:      title,
		Message:    message,
		Status:     model.AlertStatusPending,
	}
	if err := e.db.Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// Dispatch loads the alert and its workflow's configuration and attempts
// delivery on every enabled channel concurrently. The final status waits for
// all channels; at least one successful channel transitions the alert to
// sent, none to failed. Transport failures are reported in the result and
// never escape the call.
func (e *Engine) Dispatch(alertID string) (*DispatchResult, error) {
	var alert model.WorkflowAlert
	if err := e.db.First(&alert, "id = ?", alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	if alert.Status == model.AlertStatusAcknowledged {
		return nil, ErrAlreadyAcknowledged
	}

	var cfg model.AlertConfiguration
	if err := e.db.First(&cfg, "workflow_id = ?", alert.WorkflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoChannelsEnabled
		}
		return nil, err
	}
	if !cfg.SlackEnabled && !cfg.EmailEnabled {
		return nil, ErrNoChannelsEnabled
	}

	var (
		mu      sync.Mutex
		results []ChannelResult
		wg      sync.WaitGroup
	)
	record := func(result ChannelResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, result)
	}

	if cfg.SlackEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			details := map[string]string{
				"workflow": alert.WorkflowID,
				"type":     alert.Type,
			}
			if alert.ExecutionID != "" {
				details["execution"] = alert.ExecutionID
			}
			err := e.slack.Send(cfg.SlackWebhookURL, cfg.SlackChannel, alert.Title, alert.Message, details)
			if err != nil {
				record(ChannelResult{Channel: "slack", Success: false, Error: err.Error()})
				return
			}
			record(ChannelResult{Channel: "slack", Success: true})
		}()
	}

	if cfg.EmailEnabled {
		// Declared in configuration but not implemented yet: fail soft and
		// report it explicitly instead of silently ignoring the channel.
		record(ChannelResult{
			Channel: "email",
			Success: false,
			Error:   "email channel is not implemented",
		})
	}

	wg.Wait()

	anySuccess := false
	for _, result := range results {
		if result.Success {
			anySuccess = true
			break
		}
	}

	status := model.AlertStatusFailed
	updates := map[string]any{"status": status}
	if anySuccess {
		status = model.AlertStatusSent
		now := time.Now()
		updates["status"] = status
		updates["sent_at"] = &now
	}
	if raw, err := utils.ToJSON(results); err == nil {
		updates["channel_results"] = raw
	}
	if err := e.db.Model(&model.WorkflowAlert{}).Where("id = ?", alert.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	logger.Info("alert dispatched",
		zap.String("alertId", alert.ID),
		zap.String("status", status),
		zap.Int("channels", len(results)),
	)

	return &DispatchResult{
		AlertID:  alert.ID,
		Success:  anySuccess,
		Status:   status,
		Channels: results,
	}, nil
}

// Acknowledge marks the alert acknowledged. Terminal: acknowledged alerts
// are never re-dispatched.
func (e *Engine) Acknowledge(alertID, by string) (*model.WorkflowAlert, error) {
	var alert model.WorkflowAlert
	if err := e.db.First(&alert, "id = ?", alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	if alert.Status == model.AlertStatusAcknowledged {
		return nil, ErrAlreadyAcknowledged
	}

	now := time.Now()
	updates := map[string]any{
		"status":          model.AlertStatusAcknowledged,
		"acknowledged_at": &now,
		"acknowledged_by": by,
	}
	if err := e.db.Model(&model.WorkflowAlert{}).Where("id = ?", alert.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	alert.Status = model.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = by
	return &alert, nil
}
