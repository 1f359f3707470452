package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MetricsGet returns the current aggregate for one workflow.
func MetricsGet(c *fiber.Ctx) error {
	metrics, err := svc.Ctx.Metrics.Get(c.Params("workflowId"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, metrics)
}

// MetricsRecompute rebuilds the aggregate from the execution history.
func MetricsRecompute(c *fiber.Ctx) error {
	metrics, err := svc.Ctx.Metrics.Recompute(c.Params("workflowId"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, metrics)
}

// AnalyticsReport returns stats, health score, and recommendations.
func AnalyticsReport(c *fiber.Ctx) error {
	meta, err := svc.Ctx.Workflows.Get(c.Params("workflowId"))
	if err != nil {
		return fail(c, err)
	}

	report, err := svc.Ctx.Metrics.Analyze(meta.WorkflowID, meta.Name)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, report)
}
