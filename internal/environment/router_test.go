package environment

import (
	"path/filepath"
	"testing"

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

func threeSeeds() []config.EnvironmentConfig {
	return []config.EnvironmentConfig{
		{Type: model.EnvDevelopment, Name: "local", ApiURL: "http://localhost:5678/api/v1"},
		{Type: model.EnvStaging, Name: "staging", ApiURL: "https://staging.internal/api/v1", ApiKey: "staging-key"},
		{Type: model.EnvProduction, Name: "prod", ApiURL: "https://prod.internal/api/v1", ApiKey: "prod-key"},
	}
}

func TestNewRouterSeedsAndDefaultsToDevelopment(t *testing.T) {
	db := testDB(t)

	r, err := NewRouter(db, threeSeeds())
	require.NoError(t, err)

	current := r.Current()
	assert.Equal(t, model.EnvDevelopment, current.Type)
	assert.True(t, current.IsActive)
	assert.Equal(t, "http://localhost:5678/api/v1", r.ApiURL())

	envs, err := r.List()
	require.NoError(t, err)
	assert.Len(t, envs, 3)

	// Re-seeding does not duplicate rows.
	_, err = NewRouter(db, threeSeeds())
	require.NoError(t, err)
	envs, err = r.List()
	require.NoError(t, err)
	assert.Len(t, envs, 3)
}

func TestNewRouterRejectsUnknownType(t *testing.T) {
	db := testDB(t)
	_, err := NewRouter(db, []config.EnvironmentConfig{{Type: "qa", ApiURL: "http://qa/api"}})
	assert.ErrorIs(t, err, ErrInvalidEnvironmentType)
}

func TestSwitchRoutesSubsequentCalls(t *testing.T) {
	db := testDB(t)
	r, err := NewRouter(db, threeSeeds())
	require.NoError(t, err)

	// Testing connectivity against staging must not move the selection.
	result, err := r.TestConnection(model.EnvStaging)
	require.NoError(t, err)
	assert.Equal(t, model.EnvStaging, result.Environment)
	assert.Equal(t, model.EnvDevelopment, r.Current().Type)

	env, err := r.Switch(model.EnvProduction, true)
	require.NoError(t, err)
	assert.True(t, env.IsActive)

	assert.Equal(t, model.EnvProduction, r.Current().Type)
	assert.Equal(t, "https://prod.internal/api/v1", r.ApiURL())

	headers := r.ApiHeaders()
	assert.Equal(t, "prod-key", headers[ApiKeyHeader])
	assert.Equal(t, "application/json", headers["Accept"])

	// Exactly one durable active row.
	var active int64
	db.Model(&model.Environment{}).Where("is_active = ?", true).Count(&active)
	assert.EqualValues(t, 1, active)
}

func TestSwitchProductionRequiresConfirmation(t *testing.T) {
	db := testDB(t)
	r, err := NewRouter(db, threeSeeds())
	require.NoError(t, err)

	_, err = r.Switch(model.EnvProduction, false)
	assert.ErrorIs(t, err, ErrProductionConfirmRequired)
	assert.Equal(t, model.EnvDevelopment, r.Current().Type)

	// Staging needs no confirmation.
	_, err = r.Switch(model.EnvStaging, false)
	require.NoError(t, err)
	assert.Equal(t, model.EnvStaging, r.Current().Type)
}

func TestSwitchUnknownEnvironment(t *testing.T) {
	db := testDB(t)
	r, err := NewRouter(db, []config.EnvironmentConfig{
		{Type: model.EnvDevelopment, ApiURL: "http://localhost:5678/api/v1"},
	})
	require.NoError(t, err)

	_, err = r.Switch("qa", false)
	assert.ErrorIs(t, err, ErrInvalidEnvironmentType)

	_, err = r.Switch(model.EnvStaging, false)
	assert.ErrorIs(t, err, ErrEnvironmentNotFound)
}

func TestSelectionSurvivesRestart(t *testing.T) {
	db := testDB(t)
	r, err := NewRouter(db, threeSeeds())
	require.NoError(t, err)

	_, err = r.Switch(model.EnvStaging, false)
	require.NoError(t, err)

	// A new router over the same database restores the durable selection.
	restored, err := NewRouter(db, threeSeeds())
	require.NoError(t, err)
	assert.Equal(t, model.EnvStaging, restored.Current().Type)
}

func TestTestConnectionReportsFailureSoftly(t *testing.T) {
	db := testDB(t)
	r, err := NewRouter(db, []config.EnvironmentConfig{
		{Type: model.EnvDevelopment, ApiURL: "http://127.0.0.1:1/api/v1"},
	})
	require.NoError(t, err)

	result, err := r.TestConnection(model.EnvDevelopment)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	_, err = r.TestConnection(model.EnvStaging)
	assert.ErrorIs(t, err, ErrEnvironmentNotFound)
}

func TestValidate(t *testing.T) {
	db := testDB(t)
	r, err := NewRouter(db, []config.EnvironmentConfig{
		{Type: model.EnvDevelopment, ApiURL: "http://localhost:5678/api/v1"},
		{Type: model.EnvStaging, ApiURL: "not a url"},
		{Type: model.EnvProduction, ApiURL: "https://prod.internal/api/v1", ApiKey: "prod-key"},
	})
	require.NoError(t, err)

	violations, err := r.Validate(model.EnvDevelopment)
	require.NoError(t, err)
	assert.Empty(t, violations)

	// Bad URL and a missing credential outside development.
	violations, err = r.Validate(model.EnvStaging)
	require.NoError(t, err)
	require.Len(t, violations, 2)

	violations, err = r.Validate(model.EnvProduction)
	require.NoError(t, err)
	assert.Empty(t, violations)

	_, err = r.Validate("qa")
	assert.ErrorIs(t, err, ErrInvalidEnvironmentType)
}
