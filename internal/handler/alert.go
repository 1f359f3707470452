package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AlertList returns filtered alerts.
func AlertList(c *fiber.Ctx) error {
	req := types.ListAlertsRequest{
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("pageSize", 20),
		WorkflowID: c.Query("workflowId"),
		Status:     c.Query("status"),
		Type:       c.Query("type"),
	}

	alerts, total, err := svc.Ctx.AlertLogic.List(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Page(c, alerts, total, req.Page, req.PageSize)
}

// AlertGet returns one alert.
func AlertGet(c *fiber.Ctx) error {
	alert, err := svc.Ctx.AlertLogic.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, alert)
}

// AlertCreate raises an alert manually.
func AlertCreate(c *fiber.Ctx) error {
	var req types.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.WorkflowID == "" || req.Type == "" || req.Title == "" {
		return response.BadRequest(c, "workflowId, type and title are required")
	}

	alert, err := svc.Ctx.AlertLogic.Create(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, alert)
}

// AlertSend dispatches one alert to its configured channels. Channel
// failures are part of the result, not an HTTP error.
func AlertSend(c *fiber.Ctx) error {
	result, err := svc.Ctx.AlertLogic.Send(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, result)
}

// AlertAcknowledge moves an alert into its terminal state.
func AlertAcknowledge(c *fiber.Ctx) error {
	var req types.AcknowledgeAlertRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "invalid request body")
	}

	alert, err := svc.Ctx.AlertLogic.Acknowledge(c.Params("id"), req.AcknowledgedBy)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, alert)
}

// AlertConfigGet returns a workflow's alert configuration.
func AlertConfigGet(c *fiber.Ctx) error {
	cfg, err := svc.Ctx.AlertLogic.GetConfig(c.Params("workflowId"))
	if err != nil {
		return response.NotFound(c, "alert configuration not found")
	}
	return response.OK(c, cfg)
}

// AlertConfigUpsert creates or replaces a workflow's alert configuration.
func AlertConfigUpsert(c *fiber.Ctx) error {
	var req types.UpsertAlertConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	cfg, err := svc.Ctx.AlertLogic.UpsertConfig(c.Params("workflowId"), &req)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, cfg)
}

// AlertConfigDelete removes a workflow's alert configuration.
func AlertConfigDelete(c *fiber.Ctx) error {
	if err := svc.Ctx.AlertLogic.DeleteConfig(c.Params("workflowId")); err != nil {
		return response.NotFound(c, "alert configuration not found")
	}
	return response.NoContent(c)
}
