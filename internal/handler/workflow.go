package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WorkflowList returns filtered workflow metadata.
func WorkflowList(c *fiber.Ctx) error {
	req := types.ListWorkflowsRequest{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 20),
		Name:     c.Query("name"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Team:     c.Query("team"),
	}

	workflows, total, err := svc.Ctx.Workflows.List(&req)
	if err != nil {
		return fail(c, err)
	}
	list, err := svc.Ctx.Workflows.InfoList(workflows)
	if err != nil {
		return fail(c, err)
	}
	return response.Page(c, list, total, req.Page, req.PageSize)
}

// WorkflowGet returns one workflow's metadata.
func WorkflowGet(c *fiber.Ctx) error {
	meta, err := svc.Ctx.Workflows.Get(c.Params("workflowId"))
	if err != nil {
		return fail(c, err)
	}
	info, err := svc.Ctx.Workflows.Info(meta)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, info)
}

// WorkflowCreate registers workflow metadata.
func WorkflowCreate(c *fiber.Ctx) error {
	var req types.CreateWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.WorkflowID == "" || req.Name == "" {
		return response.BadRequest(c, "workflowId and name are required")
	}

	meta, err := svc.Ctx.Workflows.Create(&req)
	if err != nil {
		return fail(c, err)
	}
	info, err := svc.Ctx.Workflows.Info(meta)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, info)
}

// WorkflowUpdate mutates workflow metadata.
func WorkflowUpdate(c *fiber.Ctx) error {
	var req types.UpdateWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	meta, err := svc.Ctx.Workflows.Update(c.Params("workflowId"), &req)
	if err != nil {
		return fail(c, err)
	}
	info, err := svc.Ctx.Workflows.Info(meta)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, info)
}

// WorkflowDelete removes a workflow and its dependents.
func WorkflowDelete(c *fiber.Ctx) error {
	if err := svc.Ctx.Workflows.Delete(c.Params("workflowId")); err != nil {
		return fail(c, err)
	}
	return response.NoContent(c)
}

// WorkflowSync pulls the workflow list from the current environment's
// orchestrator and upserts metadata.
func WorkflowSync(c *fiber.Ctx) error {
	env := svc.Ctx.Env.Current()
	result, err := svc.Ctx.Workflows.Sync(env.Type)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}
	return response.OK(c, result)
}
