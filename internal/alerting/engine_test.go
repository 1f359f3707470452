package alerting

import (
	"path/filepath"
	"testing"
	"time"

	"flowpulse/internal/config"
	"flowpulse/internal/model"
	"flowpulse/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&database.Config{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return NewEngine(db, config.AlertingConfig{DispatchTimeout: time.Second}), db
}

func failedExecution(workflowID, message string) *model.WorkflowExecution {
	duration := int64(1500)
	finished := time.Now()
	return &model.WorkflowExecution{
		WorkflowID:   workflowID,
		Status:       model.ExecutionStatusError,
		StartedAt:    finished.Add(-time.Duration(duration) * time.Millisecond),
		FinishedAt:   &finished,
		Duration:     &duration,
		ErrorMessage: message,
	}
}

func alertCount(t *testing.T, db *gorm.DB, workflowID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.WorkflowAlert{}).Where("workflow_id = ?", workflowID).Count(&count).Error)
	return count
}

func TestEvaluateExecutionErrorCreatesOneAlert(t *testing.T) {
	engine, db := newTestEngine(t)

	cfg := &model.AlertConfiguration{
		WorkflowID:             "wf-1",
		OnError:                true,
		OnSlowExecution:        true,
		SlowExecutionThreshold: 1,
	}

	// The execution is both failed and slow; the error predicate wins.
	alert, err := engine.EvaluateExecution(failedExecution("wf-1", "node crashed"), cfg)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, model.AlertTypeError, alert.Type)
	assert.Equal(t, model.AlertStatusPending, alert.Status)
	assert.Equal(t, "node crashed", alert.Message)

	assert.EqualValues(t, 1, alertCount(t, db, "wf-1"))
}

func TestEvaluateExecutionErrorWithoutMessage(t *testing.T) {
	engine, _ := newTestEngine(t)

	alert, err := engine.EvaluateExecution(failedExecution("wf-1", ""), &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true})
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.NotEmpty(t, alert.Message)
}

func TestEvaluateExecutionSlow(t *testing.T) {
	engine, _ := newTestEngine(t)

	duration := int64(5000)
	exec := &model.WorkflowExecution{
		WorkflowID: "wf-1",
		Status:     model.ExecutionStatusSuccess,
		StartedAt:  time.Now(),
		Duration:   &duration,
	}
	cfg := &model.AlertConfiguration{
		WorkflowID:             "wf-1",
		OnSlowExecution:        true,
		SlowExecutionThreshold: 1000,
	}

	alert, err := engine.EvaluateExecution(exec, cfg)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, model.AlertTypeSlowExecution, alert.Type)
}

func TestEvaluateExecutionNothingQualifies(t *testing.T) {
	engine, db := newTestEngine(t)

	exec := &model.WorkflowExecution{
		WorkflowID: "wf-1",
		Status:     model.ExecutionStatusSuccess,
		StartedAt:  time.Now(),
	}

	alert, err := engine.EvaluateExecution(exec, &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true})
	require.NoError(t, err)
	assert.Nil(t, alert)

	// No configuration means no alert, never an error.
	alert, err = engine.EvaluateExecution(failedExecution("wf-1", "boom"), nil)
	require.NoError(t, err)
	assert.Nil(t, alert)

	assert.EqualValues(t, 0, alertCount(t, db, "wf-1"))
}

func TestCoalescingSuppressesDuplicates(t *testing.T) {
	engine, db := newTestEngine(t)

	cfg := &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true, CoalesceWindow: 300}

	first, err := engine.EvaluateExecution(failedExecution("wf-1", "boom"), cfg)
	require.NoError(t, err)
	require.NotNil(t, first)

	// A second failure within the window is suppressed.
	second, err := engine.EvaluateExecution(failedExecution("wf-1", "boom again"), cfg)
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.EqualValues(t, 1, alertCount(t, db, "wf-1"))

	// Acknowledging the open alert lifts the suppression.
	_, err = engine.Acknowledge(first.ID, "oncall")
	require.NoError(t, err)

	third, err := engine.EvaluateExecution(failedExecution("wf-1", "boom once more"), cfg)
	require.NoError(t, err)
	require.NotNil(t, third)
	assert.EqualValues(t, 2, alertCount(t, db, "wf-1"))
}

func TestDispatchUnreachableWebhookFailsSoft(t *testing.T) {
	engine, db := newTestEngine(t)

	require.NoError(t, db.Create(&model.AlertConfiguration{
		WorkflowID:      "wf-1",
		OnError:         true,
		SlackEnabled:    true,
		SlackWebhookURL: "http://127.0.0.1:1/webhook",
	}).Error)

	alert, err := engine.EvaluateExecution(failedExecution("wf-1", "boom"), &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true})
	require.NoError(t, err)
	require.NotNil(t, alert)

	result, err := engine.Dispatch(alert.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, model.AlertStatusFailed, result.Status)
	require.Len(t, result.Channels, 1)
	assert.Equal(t, "slack", result.Channels[0].Channel)
	assert.False(t, result.Channels[0].Success)
	assert.NotEmpty(t, result.Channels[0].Error)

	var stored model.WorkflowAlert
	require.NoError(t, db.First(&stored, "id = ?", alert.ID).Error)
	assert.Equal(t, model.AlertStatusFailed, stored.Status)
	assert.Nil(t, stored.SentAt)
	assert.NotEmpty(t, stored.ChannelResults)
}

func TestDispatchEmailChannelNotImplemented(t *testing.T) {
	engine, db := newTestEngine(t)

	require.NoError(t, db.Create(&model.AlertConfiguration{
		WorkflowID:   "wf-1",
		OnError:      true,
		EmailEnabled: true,
	}).Error)

	alert, err := engine.EvaluateExecution(failedExecution("wf-1", "boom"), &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true})
	require.NoError(t, err)
	require.NotNil(t, alert)

	result, err := engine.Dispatch(alert.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Channels, 1)
	assert.Equal(t, "email", result.Channels[0].Channel)
	assert.Contains(t, result.Channels[0].Error, "not implemented")
}

func TestDispatchWithoutChannels(t *testing.T) {
	engine, db := newTestEngine(t)

	alert, err := engine.EvaluateExecution(failedExecution("wf-1", "boom"), &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true})
	require.NoError(t, err)
	require.NotNil(t, alert)

	// No configuration row at all.
	_, err = engine.Dispatch(alert.ID)
	assert.ErrorIs(t, err, ErrNoChannelsEnabled)

	// A row with every channel disabled is the same.
	require.NoError(t, db.Create(&model.AlertConfiguration{WorkflowID: "wf-1", OnError: true}).Error)
	_, err = engine.Dispatch(alert.ID)
	assert.ErrorIs(t, err, ErrNoChannelsEnabled)

	_, err = engine.Dispatch("missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestAcknowledgeIsTerminal(t *testing.T) {
	engine, db := newTestEngine(t)

	require.NoError(t, db.Create(&model.AlertConfiguration{
		WorkflowID:   "wf-1",
		OnError:      true,
		EmailEnabled: true,
	}).Error)

	alert, err := engine.EvaluateExecution(failedExecution("wf-1", "boom"), &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true})
	require.NoError(t, err)
	require.NotNil(t, alert)

	acked, err := engine.Acknowledge(alert.ID, "oncall")
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusAcknowledged, acked.Status)
	assert.Equal(t, "oncall", acked.AcknowledgedBy)
	require.NotNil(t, acked.AcknowledgedAt)

	_, err = engine.Acknowledge(alert.ID, "oncall")
	assert.ErrorIs(t, err, ErrAlreadyAcknowledged)

	// Acknowledged alerts are never re-dispatched.
	_, err = engine.Dispatch(alert.ID)
	assert.ErrorIs(t, err, ErrAlreadyAcknowledged)

	_, err = engine.Acknowledge("missing", "oncall")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestEvaluateHealthCheck(t *testing.T) {
	engine, _ := newTestEngine(t)

	down := &model.WorkflowHealthCheck{
		WorkflowID: "wf-1",
		Status:     model.HealthStatusDown,
		Error:      "connection refused",
		CheckedAt:  time.Now(),
	}
	alert, err := engine.EvaluateHealthCheck(down, &model.AlertConfiguration{WorkflowID: "wf-1", OnError: true})
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, model.AlertTypeHealth, alert.Type)
	assert.Equal(t, "connection refused", alert.Message)

	degraded := &model.WorkflowHealthCheck{
		WorkflowID: "wf-2",
		Status:     model.HealthStatusDegraded,
		CheckedAt:  time.Now(),
	}
	alert, err = engine.EvaluateHealthCheck(degraded, &model.AlertConfiguration{WorkflowID: "wf-2", OnError: true})
	require.NoError(t, err)
	assert.Nil(t, alert)

	alert, err = engine.EvaluateHealthCheck(degraded, &model.AlertConfiguration{WorkflowID: "wf-2", OnWarning: true})
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, model.AlertTypeWarning, alert.Type)

	healthy := &model.WorkflowHealthCheck{WorkflowID: "wf-3", Status: model.HealthStatusHealthy, CheckedAt: time.Now()}
	alert, err = engine.EvaluateHealthCheck(healthy, &model.AlertConfiguration{WorkflowID: "wf-3", OnError: true, OnWarning: true})
	require.NoError(t, err)
	assert.Nil(t, alert)
}
