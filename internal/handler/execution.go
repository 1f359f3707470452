package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ExecutionList returns filtered executions.
func ExecutionList(c *fiber.Ctx) error {
	req := types.ListExecutionsRequest{
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("pageSize", 20),
		WorkflowID: c.Query("workflowId"),
		Status:     c.Query("status"),
	}

	executions, total, err := svc.Ctx.Executions.List(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Page(c, executions, total, req.Page, req.PageSize)
}

// ExecutionGet returns one execution.
func ExecutionGet(c *fiber.Ctx) error {
	exec, err := svc.Ctx.Executions.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, exec)
}

// ExecutionCreate records a new run.
func ExecutionCreate(c *fiber.Ctx) error {
	var req types.CreateExecutionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.WorkflowID == "" {
		return response.BadRequest(c, "workflowId is required")
	}

	exec, err := svc.Ctx.Executions.Create(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, exec)
}

// ExecutionUpdate finishes a run.
func ExecutionUpdate(c *fiber.Ctx) error {
	var req types.UpdateExecutionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "status is required")
	}

	exec, err := svc.Ctx.Executions.Update(c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, exec)
}

// ExecutionLogs returns an execution's log entries.
func ExecutionLogs(c *fiber.Ctx) error {
	logs, err := svc.Ctx.Executions.ListLogs(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, logs)
}

// ExecutionAppendLog appends one log entry.
func ExecutionAppendLog(c *fiber.Ctx) error {
	var req types.AppendLogRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Message == "" {
		return response.BadRequest(c, "message is required")
	}

	entry, err := svc.Ctx.Executions.AppendLog(c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, entry)
}
