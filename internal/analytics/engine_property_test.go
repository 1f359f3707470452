// Property-based coverage for the health score: monotonically non-decreasing
// in uptime holding error rate fixed, and non-increasing in error rate
// holding uptime fixed.
package analytics

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func statsWith(uptime, errorRate float64) *Stats {
	return &Stats{
		WorkflowID:      "wf-prop",
		TotalExecutions: 10,
		Uptime:          &uptime,
		ErrorRate:       &errorRate,
		Trend:           TrendStable,
		ComputedAt:      time.Now(),
	}
}

func TestHealthScoreMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	engine := NewEngine(testConfig(), nil)

	properties.Property("higher uptime never lowers the score", prop.ForAll(
		func(uptimeA, uptimeB, errorRate float64) bool {
			lo, hi := uptimeA, uptimeB
			if lo > hi {
				lo, hi = hi, lo
			}
			scoreLo := engine.CalculateHealthScore(statsWith(lo, errorRate)).Score
			scoreHi := engine.CalculateHealthScore(statsWith(hi, errorRate)).Score
			return scoreHi >= scoreLo
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.Property("higher error rate never raises the score", prop.ForAll(
		func(errorA, errorB, uptime float64) bool {
			lo, hi := errorA, errorB
			if lo > hi {
				lo, hi = hi, lo
			}
			scoreLo := engine.CalculateHealthScore(statsWith(uptime, lo)).Score
			scoreHi := engine.CalculateHealthScore(statsWith(uptime, hi)).Score
			return scoreHi <= scoreLo
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.Property("score stays within 0-100", prop.ForAll(
		func(uptime, errorRate float64) bool {
			score := engine.CalculateHealthScore(statsWith(uptime, errorRate)).Score
			return score >= 0 && score <= 100
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
