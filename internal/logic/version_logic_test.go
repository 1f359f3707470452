package logic

import (
	"sync"
	"testing"

	"flowpulse/internal/model"
	"flowpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newVersionLogic(t *testing.T) (*VersionLogic, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return NewVersionLogic(db, testStore(t)), db
}

func createVersion(t *testing.T, l *VersionLogic, workflowID, version string, definition any) *model.WorkflowVersion {
	t.Helper()
	v, err := l.Create(&types.CreateVersionRequest{
		WorkflowID: workflowID,
		Version:    version,
		Definition: definition,
		Changelog:  "change for " + version,
		Author:     "tester",
	})
	require.NoError(t, err)
	return v
}

func TestCreateVersionCommitsDefinition(t *testing.T) {
	l, _ := newVersionLogic(t)
	seedWorkflow(t, l.db, "wf-1", "Order Intake")

	v := createVersion(t, l, "wf-1", "1.0.0", map[string]any{"nodes": []any{}})
	assert.Len(t, v.CommitHash, 40)
	assert.Equal(t, "main", v.Branch)
	assert.Equal(t, model.ChangeTypeFeature, v.ChangeType)
	assert.False(t, v.IsActive)

	// The committed content is exactly the stored definition.
	content, err := l.store.GetWorkflowAtCommit("wf-1", v.CommitHash)
	require.NoError(t, err)
	assert.Equal(t, v.Definition, content)
}

func TestCreateVersionGuards(t *testing.T) {
	l, _ := newVersionLogic(t)
	seedWorkflow(t, l.db, "wf-1", "Order Intake")
	createVersion(t, l, "wf-1", "1.0.0", map[string]any{"v": 1})

	_, err := l.Create(&types.CreateVersionRequest{
		WorkflowID: "missing",
		Version:    "1.0.0",
		Definition: map[string]any{},
	})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = l.Create(&types.CreateVersionRequest{
		WorkflowID: "wf-1",
		Version:    "1.0.0",
		Definition: map[string]any{"v": 2},
	})
	assert.ErrorIs(t, err, ErrVersionExists)
}

func TestActivateVersionDeactivatesSiblings(t *testing.T) {
	l, db := newVersionLogic(t)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	v1 := createVersion(t, l, "wf-1", "1.0.0", map[string]any{"v": 1})
	v2 := createVersion(t, l, "wf-1", "2.0.0", map[string]any{"v": 2})

	_, err := l.Activate(v2.ID, "deployer")
	require.NoError(t, err)

	activated, err := l.Activate(v1.ID, "deployer")
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.Equal(t, "deployer", activated.DeployedBy)
	require.NotNil(t, activated.DeployedAt)

	reloaded, err := l.Get(v2.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	var meta model.WorkflowMetadata
	require.NoError(t, db.First(&meta, "workflow_id = ?", "wf-1").Error)
	assert.Equal(t, "1.0.0", meta.Version)
}

func TestActivateVersionConcurrentSingleWinner(t *testing.T) {
	l, db := newVersionLogic(t)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	v1 := createVersion(t, l, "wf-1", "1.0.0", map[string]any{"v": 1})
	v2 := createVersion(t, l, "wf-1", "2.0.0", map[string]any{"v": 2})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		id := v1.ID
		if i%2 == 0 {
			id = v2.ID
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := l.Activate(id, "race")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	var active int64
	require.NoError(t, db.Model(&model.WorkflowVersion{}).
		Where("workflow_id = ? AND is_active = ?", "wf-1", true).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)
}

func TestDeleteVersionGuards(t *testing.T) {
	l, _ := newVersionLogic(t)
	seedWorkflow(t, l.db, "wf-1", "Order Intake")

	v1 := createVersion(t, l, "wf-1", "1.0.0", map[string]any{"v": 1})
	v2 := createVersion(t, l, "wf-1", "2.0.0", map[string]any{"v": 2})

	_, err := l.Activate(v2.ID, "deployer")
	require.NoError(t, err)

	assert.ErrorIs(t, l.Delete(v2.ID), ErrActiveVersionDelete)
	require.NoError(t, l.Delete(v1.ID))

	_, err = l.Get(v1.ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	assert.ErrorIs(t, l.Delete("missing"), ErrVersionNotFound)
}

func TestRollbackRecordsHotfixVersion(t *testing.T) {
	l, db := newVersionLogic(t)
	seedWorkflow(t, db, "wf-1", "Order Intake")

	v1 := createVersion(t, l, "wf-1", "1.0.0", map[string]any{"v": 1})
	v2 := createVersion(t, l, "wf-1", "2.0.0", map[string]any{"v": 2})
	_, err := l.Activate(v2.ID, "deployer")
	require.NoError(t, err)

	restored, err := l.Rollback(&types.RollbackRequest{
		WorkflowID: "wf-1",
		Hash:       v1.CommitHash,
		DeployedBy: "oncall",
	})
	require.NoError(t, err)

	assert.True(t, restored.IsActive)
	assert.Equal(t, model.ChangeTypeHotfix, restored.ChangeType)
	assert.Equal(t, v1.Definition, restored.Definition)
	assert.Contains(t, restored.Version, "rollback-")
	assert.Equal(t, "oncall", restored.DeployedBy)

	// The restored definition lands as a new commit, not a history rewrite.
	assert.NotEqual(t, v1.CommitHash, restored.CommitHash)

	var meta model.WorkflowMetadata
	require.NoError(t, db.First(&meta, "workflow_id = ?", "wf-1").Error)
	assert.Equal(t, restored.Version, meta.Version)
}

func TestRollbackUnknownHash(t *testing.T) {
	l, db := newVersionLogic(t)
	seedWorkflow(t, db, "wf-1", "Order Intake")
	createVersion(t, l, "wf-1", "1.0.0", map[string]any{"v": 1})

	_, err := l.Rollback(&types.RollbackRequest{WorkflowID: "wf-1", Hash: "deadbeef"})
	assert.Error(t, err)

	_, err = l.Rollback(&types.RollbackRequest{WorkflowID: "missing", Hash: "deadbeef"})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}
