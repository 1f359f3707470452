package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EnvironmentList returns every registered environment.
func EnvironmentList(c *fiber.Ctx) error {
	envs, err := svc.Ctx.Env.List()
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, envs)
}

// EnvironmentCurrent returns the current selection.
func EnvironmentCurrent(c *fiber.Ctx) error {
	env := svc.Ctx.Env.Current()
	return response.OK(c, env)
}

// EnvironmentSwitch changes the process-wide current environment.
func EnvironmentSwitch(c *fiber.Ctx) error {
	var req types.SwitchEnvironmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Type == "" {
		return response.BadRequest(c, "type is required")
	}

	env, err := svc.Ctx.Env.Switch(req.Type, req.Confirm)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, env)
}

// EnvironmentTest probes an environment's orchestrator without switching.
func EnvironmentTest(c *fiber.Ctx) error {
	result, err := svc.Ctx.Env.TestConnection(c.Params("type"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, result)
}

// EnvironmentValidate reports configuration violations for an environment.
func EnvironmentValidate(c *fiber.Ctx) error {
	violations, err := svc.Ctx.Env.Validate(c.Params("type"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, fiber.Map{
		"valid":      len(violations) == 0,
		"violations": violations,
	})
}
