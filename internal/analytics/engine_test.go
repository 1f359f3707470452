package analytics

import (
	"testing"
	"time"

	"flowpulse/internal/config"
	"flowpulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		CacheTTL:          time.Minute,
		SlowP95Threshold:  30 * time.Second,
		ErrorRateCutoff:   10,
		StaleSuccessAfter: 24 * time.Hour,
	}
}

func execution(status string, duration int64, startedAt time.Time) model.WorkflowExecution {
	exec := model.WorkflowExecution{
		WorkflowID: "wf-1",
		Status:     status,
		StartedAt:  startedAt,
	}
	if duration >= 0 {
		exec.Duration = &duration
	}
	return exec
}

func TestComputeStatsEmptyHistory(t *testing.T) {
	stats := ComputeStats("wf-1", nil)

	require.NotNil(t, stats)
	assert.Equal(t, int64(0), stats.TotalExecutions)
	assert.Nil(t, stats.Uptime)
	assert.Nil(t, stats.ErrorRate)
	assert.Nil(t, stats.AvgDuration)
	assert.Nil(t, stats.P50Duration)
	assert.Nil(t, stats.P95Duration)
	assert.Nil(t, stats.P99Duration)
	assert.Nil(t, stats.LastSuccessAt)
}

func TestComputeStatsPercentiles(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	// Deliberately unsorted durations.
	durations := []int64{700, 100, 1000, 300, 900, 200, 500, 800, 400, 600}
	var executions []model.WorkflowExecution
	for i, d := range durations {
		executions = append(executions, execution(model.ExecutionStatusSuccess, d, base.Add(time.Duration(i)*time.Minute)))
	}

	stats := ComputeStats("wf-1", executions)

	require.NotNil(t, stats.P50Duration)
	require.NotNil(t, stats.P95Duration)
	require.NotNil(t, stats.P99Duration)
	// index = floor(rank * N) over ascending durations.
	assert.Equal(t, int64(600), *stats.P50Duration)
	assert.Equal(t, int64(1000), *stats.P95Duration)
	assert.Equal(t, int64(1000), *stats.P99Duration)
	require.NotNil(t, stats.AvgDuration)
	assert.InDelta(t, 550, *stats.AvgDuration, 0.001)
}

func TestComputeStatsSkipsUnknownDurations(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	executions := []model.WorkflowExecution{
		execution(model.ExecutionStatusSuccess, 100, base),
		execution(model.ExecutionStatusRunning, -1, base.Add(time.Minute)),
		execution(model.ExecutionStatusError, 300, base.Add(2*time.Minute)),
	}

	stats := ComputeStats("wf-1", executions)

	assert.Equal(t, int64(3), stats.TotalExecutions)
	assert.Equal(t, int64(1), stats.SuccessCount)
	assert.Equal(t, int64(1), stats.FailureCount)
	require.NotNil(t, stats.AvgDuration)
	assert.InDelta(t, 200, *stats.AvgDuration, 0.001)
	require.NotNil(t, stats.Uptime)
	assert.InDelta(t, 100.0/3.0, *stats.Uptime, 0.001)
}

func TestComputeStatsCancelledNotCountedAsFailure(t *testing.T) {
	base := time.Now()
	executions := []model.WorkflowExecution{
		execution(model.ExecutionStatusSuccess, 100, base),
		execution(model.ExecutionStatusCancelled, 100, base.Add(time.Minute)),
	}

	stats := ComputeStats("wf-1", executions)

	assert.Equal(t, int64(2), stats.TotalExecutions)
	assert.Equal(t, int64(1), stats.SuccessCount)
	assert.Equal(t, int64(0), stats.FailureCount)
	require.NotNil(t, stats.Uptime)
	assert.InDelta(t, 50, *stats.Uptime, 0.001)
}

func TestAnalyzePerformanceCaches(t *testing.T) {
	engine := NewEngine(testConfig(), nil)
	base := time.Now()

	first := engine.AnalyzePerformance("wf-1", []model.WorkflowExecution{
		execution(model.ExecutionStatusSuccess, 100, base),
	})
	// Different history, but the cached aggregate is still fresh.
	second := engine.AnalyzePerformance("wf-1", []model.WorkflowExecution{
		execution(model.ExecutionStatusError, 999, base),
		execution(model.ExecutionStatusError, 999, base),
	})

	assert.Equal(t, first.TotalExecutions, second.TotalExecutions)
	assert.Equal(t, first.SuccessCount, second.SuccessCount)
}

func TestHealthScoreUnknownOnZeroExecutions(t *testing.T) {
	engine := NewEngine(testConfig(), nil)

	score := engine.CalculateHealthScore(ComputeStats("wf-1", nil))
	assert.Equal(t, BandUnknown, score.Band)
	assert.InDelta(t, 50, score.Score, 0.001)

	score = engine.CalculateHealthScore(nil)
	assert.Equal(t, BandUnknown, score.Band)
}

func TestHealthScoreBands(t *testing.T) {
	engine := NewEngine(testConfig(), nil)
	base := time.Now()

	healthy := make([]model.WorkflowExecution, 0, 20)
	for i := 0; i < 20; i++ {
		healthy = append(healthy, execution(model.ExecutionStatusSuccess, 100, base.Add(time.Duration(i)*time.Minute)))
	}
	score := engine.CalculateHealthScore(ComputeStats("wf-1", healthy))
	assert.Equal(t, BandHealthy, score.Band)
	assert.InDelta(t, 100, score.Score, 0.001)

	failing := make([]model.WorkflowExecution, 0, 20)
	for i := 0; i < 20; i++ {
		failing = append(failing, execution(model.ExecutionStatusError, 100, base.Add(time.Duration(i)*time.Minute)))
	}
	score = engine.CalculateHealthScore(ComputeStats("wf-1", failing))
	assert.Equal(t, BandCritical, score.Band)
}

func TestRecommendationsThresholds(t *testing.T) {
	engine := NewEngine(testConfig(), nil)
	base := time.Now()

	var executions []model.WorkflowExecution
	for i := 0; i < 8; i++ {
		executions = append(executions, execution(model.ExecutionStatusSuccess, 100, base.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 2; i++ {
		executions = append(executions, execution(model.ExecutionStatusError, 60_000, base.Add(time.Duration(8+i)*time.Minute)))
	}

	recs := engine.GenerateRecommendations("wf-1", "Lead import", ComputeStats("wf-1", executions))

	categories := map[string]bool{}
	for _, rec := range recs {
		categories[rec.Category] = true
	}
	// 20% error rate and a 60s p95 breach both thresholds.
	assert.True(t, categories["reliability"])
	assert.True(t, categories["performance"])
}

func TestRecommendationsPure(t *testing.T) {
	engine := NewEngine(testConfig(), nil)
	stats := ComputeStats("wf-1", nil)

	first := engine.GenerateRecommendations("wf-1", "Lead import", stats)
	second := engine.GenerateRecommendations("wf-1", "Lead import", stats)
	assert.Equal(t, first, second)
}

func TestClearExpiredCache(t *testing.T) {
	cfg := testConfig()
	cfg.CacheTTL = time.Millisecond
	engine := NewEngine(cfg, nil)
	base := time.Now()

	engine.AnalyzePerformance("wf-1", []model.WorkflowExecution{
		execution(model.ExecutionStatusSuccess, 100, base),
	})
	time.Sleep(5 * time.Millisecond)
	engine.ClearExpiredCache()

	stats := engine.AnalyzePerformance("wf-1", []model.WorkflowExecution{
		execution(model.ExecutionStatusError, 100, base),
		execution(model.ExecutionStatusError, 100, base),
	})
	assert.Equal(t, int64(2), stats.TotalExecutions)
}
