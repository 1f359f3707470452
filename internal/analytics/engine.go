// Package analytics turns raw execution history into performance and
// health signals.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"flowpulse/internal/config"
	"flowpulse/internal/model"

	"github.com/redis/go-redis/v9"
)

// Health bands.
const (
	BandHealthy  = "healthy"
	BandDegraded = "degraded"
	BandCritical = "critical"
	BandUnknown  = "unknown"
)

// Trend labels.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDegrading = "degrading"
)

// Stats is the computed performance aggregate for one workflow. Percentiles
// and uptime are nil when no execution (or no measured duration) exists.
type Stats struct {
	WorkflowID string `json:"workflowId"`

	TotalExecutions int64 `json:"totalExecutions"`
	SuccessCount    int64 `json:"successCount"`
	FailureCount    int64 `json:"failureCount"`

	AvgDuration *float64 `json:"avgDuration,omitempty"` // milliseconds
	P50Duration *int64   `json:"p50Duration,omitempty"`
	P95Duration *int64   `json:"p95Duration,omitempty"`
	P99Duration *int64   `json:"p99Duration,omitempty"`

	Uptime    *float64 `json:"uptime,omitempty"`    // percent
	ErrorRate *float64 `json:"errorRate,omitempty"` // percent
	Trend     string   `json:"trend"`

	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	ComputedAt    time.Time  `json:"computedAt"`
}

// HealthScore is a 0-100 reliability summary plus a categorical band.
type HealthScore struct {
	Score float64 `json:"score"`
	Band  string  `json:"band"`
}

// Recommendation is one remediation suggestion.
type Recommendation struct {
	Priority string `json:"priority"` // high, medium, low
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Engine computes stats, health scores, and recommendations. Results are
// cached per workflow with a TTL.
type Engine struct {
	cfg   config.AnalyticsConfig
	cache Cache
}

// NewEngine builds an engine. A non-nil Redis client selects the shared
// cache backend; otherwise stats are cached in process memory.
func NewEngine(cfg config.AnalyticsConfig, redisClient *redis.Client) *Engine {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	var cache Cache
	if redisClient != nil {
		cache = newRedisCache(redisClient, cfg.CacheTTL)
	} else {
		cache = newMemoryCache(cfg.CacheTTL)
	}
	return &Engine{cfg: cfg, cache: cache}
}

// AnalyzePerformance computes the performance aggregate for the given
// execution history, serving cached results while they are fresh.
func (e *Engine) AnalyzePerformance(workflowID string, executions []model.WorkflowExecution) *Stats {
	if cached, ok := e.cache.Get(workflowID); ok {
		return cached
	}
	stats := ComputeStats(workflowID, executions)
	e.cache.Set(workflowID, stats)
	return stats
}

// ClearExpiredCache evicts stale cache entries.
func (e *Engine) ClearExpiredCache() {
	e.cache.DeleteExpired()
}

// ComputeStats is the cache-free aggregate computation.
func ComputeStats(workflowID string, executions []model.WorkflowExecution) *Stats {
	stats := &Stats{
		WorkflowID: workflowID,
		Trend:      TrendStable,
		ComputedAt: time.Now(),
	}

	var durations []int64
	for i := range executions {
		exec := &executions[i]
		stats.TotalExecutions++
		switch exec.Status {
		case model.ExecutionStatusSuccess:
			stats.SuccessCount++
			if stats.LastSuccessAt == nil || exec.StartedAt.After(*stats.LastSuccessAt) {
				started := exec.StartedAt
				stats.LastSuccessAt = &started
			}
		case model.ExecutionStatusError:
			stats.FailureCount++
		}
		if exec.Duration != nil {
			durations = append(durations, *exec.Duration)
		}
	}

	if stats.TotalExecutions > 0 {
		uptime := float64(stats.SuccessCount) / float64(stats.TotalExecutions) * 100
		errorRate := float64(stats.FailureCount) / float64(stats.TotalExecutions) * 100
		stats.Uptime = &uptime
		stats.ErrorRate = &errorRate
		stats.Trend = computeTrend(executions)
	}

	if len(durations) > 0 {
		var sum int64
		for _, d := range durations {
			sum += d
		}
		avg := float64(sum) / float64(len(durations))
		stats.AvgDuration = &avg

		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		stats.P50Duration = percentile(durations, 0.50)
		stats.P95Duration = percentile(durations, 0.95)
		stats.P99Duration = percentile(durations, 0.99)
	}

	return stats
}

// percentile uses nearest-rank indexing over ascending durations:
// index = floor(rank * N), clamped to the last element.
func percentile(sorted []int64, rank float64) *int64 {
	n := len(sorted)
	if n == 0 {
		return nil
	}
	idx := int(math.Floor(rank * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	value := sorted[idx]
	return &value
}

// computeTrend compares the success rate of the older half of the history
// against the newer half. Executions are expected newest-first as returned
// by the store, but the comparison is order-agnostic on timestamps.
func computeTrend(executions []model.WorkflowExecution) string {
	if len(executions) < 4 {
		return TrendStable
	}

	ordered := make([]model.WorkflowExecution, len(executions))
	copy(ordered, executions)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.Before(ordered[j].StartedAt)
	})

	mid := len(ordered) / 2
	oldRate := successRate(ordered[:mid])
	newRate := successRate(ordered[mid:])

	switch {
	case newRate > oldRate+5:
		return TrendImproving
	case newRate < oldRate-5:
		return TrendDegrading
	default:
		return TrendStable
	}
}

func successRate(executions []model.WorkflowExecution) float64 {
	if len(executions) == 0 {
		return 0
	}
	var success int
	for i := range executions {
		if executions[i].Status == model.ExecutionStatusSuccess {
			success++
		}
	}
	return float64(success) / float64(len(executions)) * 100
}

// CalculateHealthScore maps stats to a 0-100 score and a band. The score is
// monotonically non-decreasing in uptime and non-increasing in error rate.
// Zero executions yield the neutral unknown band.
func (e *Engine) CalculateHealthScore(stats *Stats) HealthScore {
	if stats == nil || stats.TotalExecutions == 0 || stats.Uptime == nil || stats.ErrorRate == nil {
		return HealthScore{Score: 50, Band: BandUnknown}
	}

	score := 0.7**stats.Uptime + 0.3*(100-*stats.ErrorRate)
	switch stats.Trend {
	case TrendImproving:
		score += 5
	case TrendDegrading:
		score -= 5
	}
	score = math.Max(0, math.Min(100, score))

	band := BandCritical
	switch {
	case score >= 90:
		band = BandHealthy
	case score >= 70:
		band = BandDegraded
	}

	return HealthScore{Score: score, Band: band}
}

// GenerateRecommendations derives a prioritized remediation list from
// threshold breaches. Pure function of stats.
func (e *Engine) GenerateRecommendations(workflowID, name string, stats *Stats) []Recommendation {
	recs := []Recommendation{}
	if stats == nil || stats.TotalExecutions == 0 {
		recs = append(recs, Recommendation{
			Priority: "low",
			Category: "activity",
			Message:  fmt.Sprintf("workflow %q has no recorded executions; verify it is wired to the orchestrator", name),
		})
		return recs
	}

	if stats.ErrorRate != nil && *stats.ErrorRate > e.cfg.ErrorRateCutoff {
		recs = append(recs, Recommendation{
			Priority: "high",
			Category: "reliability",
			Message:  fmt.Sprintf("error rate is %.1f%% (above %.1f%%); inspect the most recent failed executions of %q", *stats.ErrorRate, e.cfg.ErrorRateCutoff, name),
		})
	}

	if stats.P95Duration != nil && e.cfg.SlowP95Threshold > 0 && *stats.P95Duration > e.cfg.SlowP95Threshold.Milliseconds() {
		recs = append(recs, Recommendation{
			Priority: "high",
			Category: "performance",
			Message:  fmt.Sprintf("p95 duration is %dms (above %dms); profile the slowest nodes of %q", *stats.P95Duration, e.cfg.SlowP95Threshold.Milliseconds(), name),
		})
	}

	if stats.LastSuccessAt == nil {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Category: "reliability",
			Message:  fmt.Sprintf("no successful run recorded for %q; check its configuration and credentials", name),
		})
	} else if e.cfg.StaleSuccessAfter > 0 && time.Since(*stats.LastSuccessAt) > e.cfg.StaleSuccessAfter {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Category: "reliability",
			Message:  fmt.Sprintf("last successful run of %q was at %s; the workflow may be stuck or disabled", name, stats.LastSuccessAt.Format(time.RFC3339)),
		})
	}

	if stats.Uptime != nil && *stats.Uptime < 95 {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Category: "observability",
			Message:  fmt.Sprintf("uptime is %.1f%%; enable error alerts for %q to catch failures early", *stats.Uptime, name),
		})
	}

	if stats.Trend == TrendDegrading {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Category: "reliability",
			Message:  fmt.Sprintf("success rate of %q is trending down; compare recent changes against the version history", name),
		})
	}

	return recs
}
