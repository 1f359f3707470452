package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TemplateList returns filtered templates.
func TemplateList(c *fiber.Ctx) error {
	req := types.ListTemplatesRequest{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 20),
		Category: c.Query("category"),
		Name:     c.Query("name"),
	}

	templates, total, err := svc.Ctx.Templates.List(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Page(c, templates, total, req.Page, req.PageSize)
}

// TemplateGet returns one template and counts the use.
func TemplateGet(c *fiber.Ctx) error {
	tpl, err := svc.Ctx.Templates.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, tpl)
}

// TemplateCreate stores a new template.
func TemplateCreate(c *fiber.Ctx) error {
	var req types.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Name == "" || req.Definition == nil {
		return response.BadRequest(c, "name and definition are required")
	}

	tpl, err := svc.Ctx.Templates.Create(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, tpl)
}

// TemplateUpdate mutates a template.
func TemplateUpdate(c *fiber.Ctx) error {
	var req types.UpdateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	tpl, err := svc.Ctx.Templates.Update(c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, tpl)
}

// TemplateDelete removes a template.
func TemplateDelete(c *fiber.Ctx) error {
	if err := svc.Ctx.Templates.Delete(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return response.NoContent(c)
}

// TemplateRate folds one rating into the running average.
func TemplateRate(c *fiber.Ctx) error {
	var req types.RateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	tpl, err := svc.Ctx.Templates.Rate(c.Params("id"), req.Rating)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, tpl)
}
