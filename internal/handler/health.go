package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HealthList returns the health-check history.
func HealthList(c *fiber.Ctx) error {
	req := types.ListHealthChecksRequest{
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("pageSize", 20),
		WorkflowID: c.Query("workflowId"),
		Status:     c.Query("status"),
	}

	checks, total, err := svc.Ctx.Health.List(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Page(c, checks, total, req.Page, req.PageSize)
}

// HealthRun performs and persists one health check.
func HealthRun(c *fiber.Ctx) error {
	check, err := svc.Ctx.Health.Run(c.Params("workflowId"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, check)
}
