package logic

import (
	"errors"
	"time"

	"flowpulse/internal/analytics"
	"flowpulse/internal/model"

	"gorm.io/gorm"
)

// MetricsLogic maintains the rolling metrics aggregate per workflow and
// exposes the richer on-demand analysis.
type MetricsLogic struct {
	db         *gorm.DB
	engine     *analytics.Engine
	executions *ExecutionLogic
}

// NewMetricsLogic creates the metrics logic.
func NewMetricsLogic(db *gorm.DB, engine *analytics.Engine, executions *ExecutionLogic) *MetricsLogic {
	return &MetricsLogic{db: db, engine: engine, executions: executions}
}

// Get returns the current aggregate for one workflow.
func (l *MetricsLogic) Get(workflowID string) (*model.WorkflowMetrics, error) {
	var metrics model.WorkflowMetrics
	if err := l.db.First(&metrics, "workflow_id = ?", workflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoExecutions
		}
		return nil, err
	}
	return &metrics, nil
}

// Recompute rebuilds the aggregate from the full execution history and
// overwrites the current row. A workflow with no executions keeps no row.
func (l *MetricsLogic) Recompute(workflowID string) (*model.WorkflowMetrics, error) {
	executions, err := l.executions.History(workflowID)
	if err != nil {
		return nil, err
	}
	if len(executions) == 0 {
		return nil, ErrNoExecutions
	}

	stats := analytics.ComputeStats(workflowID, executions)

	periodStart := executions[0].StartedAt
	periodEnd := executions[len(executions)-1].StartedAt
	if last := executions[len(executions)-1].FinishedAt; last != nil {
		periodEnd = *last
	}

	metrics := model.WorkflowMetrics{
		WorkflowID:      workflowID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		TotalExecutions: stats.TotalExecutions,
		SuccessCount:    stats.SuccessCount,
		FailureCount:    stats.FailureCount,
		AvgDuration:     stats.AvgDuration,
		P50Duration:     stats.P50Duration,
		P95Duration:     stats.P95Duration,
		P99Duration:     stats.P99Duration,
		Uptime:          stats.Uptime,
		ComputedAt:      time.Now(),
	}

	var existing model.WorkflowMetrics
	err = l.db.First(&existing, "workflow_id = ?", workflowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := l.db.Create(&metrics).Error; err != nil {
			return nil, err
		}
		return &metrics, nil
	} else if err != nil {
		return nil, err
	}

	metrics.BaseModel = existing.BaseModel
	if err := l.db.Save(&metrics).Error; err != nil {
		return nil, err
	}
	return &metrics, nil
}

// PerformanceReport is the on-demand analysis response.
type PerformanceReport struct {
	Stats           *analytics.Stats           `json:"stats"`
	Health          analytics.HealthScore      `json:"health"`
	Recommendations []analytics.Recommendation `json:"recommendations"`
}

// Analyze computes stats, health score, and recommendations for a workflow.
func (l *MetricsLogic) Analyze(workflowID, name string) (*PerformanceReport, error) {
	executions, err := l.executions.History(workflowID)
	if err != nil {
		return nil, err
	}

	stats := l.engine.AnalyzePerformance(workflowID, executions)
	return &PerformanceReport{
		Stats:           stats,
		Health:          l.engine.CalculateHealthScore(stats),
		Recommendations: l.engine.GenerateRecommendations(workflowID, name, stats),
	}, nil
}
