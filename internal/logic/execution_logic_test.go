package logic

import (
	"testing"
	"time"

	"flowpulse/internal/model"
	"flowpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExecutionDefaultsToRunning(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	exec, err := l.Create(&types.CreateExecutionRequest{WorkflowID: "wf-1", Mode: "trigger"})
	require.NoError(t, err)
	assert.Equal(t, model.ExecutionStatusRunning, exec.Status)
	assert.Nil(t, exec.FinishedAt)
	assert.Nil(t, exec.Duration)

	// Starting a run bumps the metadata counters.
	var meta model.WorkflowMetadata
	require.NoError(t, db.First(&meta, "workflow_id = ?", "wf-1").Error)
	assert.EqualValues(t, 1, meta.ExecutionCount)
	require.NotNil(t, meta.LastExecutedAt)

	// A running execution never raises an alert.
	var alerts int64
	db.Model(&model.WorkflowAlert{}).Count(&alerts)
	assert.EqualValues(t, 0, alerts)
}

func TestCreateExecutionRejectsUnknownStatus(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)

	_, err := l.Create(&types.CreateExecutionRequest{WorkflowID: "wf-1", Status: "paused"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreateExecutionAnonymizesPayload(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	exec, err := l.Create(&types.CreateExecutionRequest{
		WorkflowID:   "wf-1",
		Status:       model.ExecutionStatusError,
		InputData:    map[string]any{"customerEmail": "ana@example.com"},
		ErrorMessage: "could not notify ana@example.com",
	})
	require.NoError(t, err)

	// The raw address never reaches the database.
	var stored model.WorkflowExecution
	require.NoError(t, db.First(&stored, "id = ?", exec.ID).Error)
	assert.NotContains(t, stored.InputData, "ana@example.com")
	assert.Contains(t, stored.InputData, "a***@e***.com")
	assert.NotContains(t, stored.ErrorMessage, "ana@example.com")
}

func TestCreateTerminalExecutionRaisesAlert(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	// No alert configuration stored: failures still alert by default.
	_, err := l.Create(&types.CreateExecutionRequest{
		WorkflowID:   "wf-1",
		Status:       model.ExecutionStatusError,
		ErrorMessage: "boom",
	})
	require.NoError(t, err)

	var alert model.WorkflowAlert
	require.NoError(t, db.First(&alert, "workflow_id = ?", "wf-1").Error)
	assert.Equal(t, model.AlertTypeError, alert.Type)
	assert.Equal(t, model.AlertStatusPending, alert.Status)
}

func TestUpdateExecutionFinishesRun(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	started := time.Now().Add(-2 * time.Second)
	exec, err := l.Create(&types.CreateExecutionRequest{WorkflowID: "wf-1", StartedAt: &started})
	require.NoError(t, err)

	finished, err := l.Update(exec.ID, &types.UpdateExecutionRequest{Status: model.ExecutionStatusSuccess})
	require.NoError(t, err)
	assert.Equal(t, model.ExecutionStatusSuccess, finished.Status)
	require.NotNil(t, finished.FinishedAt)
	require.NotNil(t, finished.Duration)
	assert.GreaterOrEqual(t, *finished.Duration, int64(2000))
}

func TestUpdateTerminalExecutionRefused(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	exec, err := l.Create(&types.CreateExecutionRequest{WorkflowID: "wf-1"})
	require.NoError(t, err)

	_, err = l.Update(exec.ID, &types.UpdateExecutionRequest{Status: model.ExecutionStatusSuccess})
	require.NoError(t, err)

	_, err = l.Update(exec.ID, &types.UpdateExecutionRequest{Status: model.ExecutionStatusError})
	assert.ErrorIs(t, err, ErrExecutionFinished)

	_, err = l.Update("missing", &types.UpdateExecutionRequest{Status: model.ExecutionStatusSuccess})
	assert.ErrorIs(t, err, ErrExecutionNotFound)

	running, err := l.Create(&types.CreateExecutionRequest{WorkflowID: "wf-1"})
	require.NoError(t, err)
	_, err = l.Update(running.ID, &types.UpdateExecutionRequest{Status: "paused"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestHistoryOldestFirst(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		started := base.Add(time.Duration(i) * time.Minute)
		_, err := l.Create(&types.CreateExecutionRequest{
			WorkflowID: "wf-1",
			Status:     model.ExecutionStatusSuccess,
			StartedAt:  &started,
		})
		require.NoError(t, err)
	}

	history, err := l.History("wf-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].StartedAt.Before(history[1].StartedAt))
	assert.True(t, history[1].StartedAt.Before(history[2].StartedAt))
}

func TestAppendLogAnonymizesMessage(t *testing.T) {
	db := testDB(t)
	l := testExecutions(t, db)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	exec, err := l.Create(&types.CreateExecutionRequest{WorkflowID: "wf-1"})
	require.NoError(t, err)

	entry, err := l.AppendLog(exec.ID, &types.AppendLogRequest{
		Message: "sent invoice to ana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.LogLevelInfo, entry.Level)
	assert.NotContains(t, entry.Message, "ana@example.com")

	logs, err := l.ListLogs(exec.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	_, err = l.AppendLog("missing", &types.AppendLogRequest{Message: "x"})
	assert.ErrorIs(t, err, ErrExecutionNotFound)
	_, err = l.ListLogs("missing")
	assert.ErrorIs(t, err, ErrExecutionNotFound)
}
