package logic

import (
	"path/filepath"
	"testing"
	"time"

	"flowpulse/internal/alerting"
	"flowpulse/internal/config"
	"flowpulse/internal/gitstore"
	"flowpulse/internal/model"
	"flowpulse/pkg/database"

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

func testStore(t *testing.T) *gitstore.Store {
	t.Helper()
	store, err := gitstore.Open(gitstore.Options{
		RepoPath:      filepath.Join(t.TempDir(), "repo"),
		DefaultBranch: "main",
	})
	require.NoError(t, err)
	return store
}

func testCompliance(t *testing.T, db *gorm.DB) *ComplianceLogic {
	t.Helper()
	compliance, err := NewComplianceLogic(db, config.AnonymizerConfig{
		Level:          model.AnonLevelPartial,
		PreserveFormat: true,
		HashSalt:       "test-salt",
	})
	require.NoError(t, err)
	return compliance
}

func testExecutions(t *testing.T, db *gorm.DB) *ExecutionLogic {
	t.Helper()
	engine := alerting.NewEngine(db, config.AlertingConfig{DispatchTimeout: time.Second})
	return NewExecutionLogic(db, engine, testCompliance(t, db))
}

func seedWorkflow(t *testing.T, db *gorm.DB, workflowID, name string) *model.WorkflowMetadata {
	t.Helper()
	meta := &model.WorkflowMetadata{
		WorkflowID: workflowID,
		Name:       name,
		Status:     model.WorkflowStatusActive,
	}
	require.NoError(t, db.Create(meta).Error)
	return meta
}
