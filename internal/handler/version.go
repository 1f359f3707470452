package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VersionList returns filtered versions.
func VersionList(c *fiber.Ctx) error {
	req := types.ListVersionsRequest{
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("pageSize", 20),
		WorkflowID: c.Query("workflowId"),
	}
	if c.Query("isActive") != "" {
		active := c.QueryBool("isActive")
		req.IsActive = &active
	}

	versions, total, err := svc.Ctx.Versions.List(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Page(c, versions, total, req.Page, req.PageSize)
}

// VersionGet returns one version.
func VersionGet(c *fiber.Ctx) error {
	version, err := svc.Ctx.Versions.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, version)
}

// VersionCreate snapshots a definition as a new version.
func VersionCreate(c *fiber.Ctx) error {
	var req types.CreateVersionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.WorkflowID == "" || req.Version == "" || req.Definition == nil {
		return response.BadRequest(c, "workflowId, version and definition are required")
	}

	version, err := svc.Ctx.Versions.Create(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, version)
}

// VersionActivate makes one version active.
func VersionActivate(c *fiber.Ctx) error {
	var req types.ActivateVersionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "invalid request body")
	}

	version, err := svc.Ctx.Versions.Activate(c.Params("id"), req.DeployedBy)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, version)
}

// VersionDelete removes a non-active version.
func VersionDelete(c *fiber.Ctx) error {
	if err := svc.Ctx.Versions.Delete(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return response.NoContent(c)
}
