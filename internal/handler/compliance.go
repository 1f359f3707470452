package handler

import (
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ComplianceConfigGet returns the anonymization configuration.
func ComplianceConfigGet(c *fiber.Ctx) error {
	cfg, err := svc.Ctx.Compliance.GetConfig()
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, cfg)
}

// ComplianceConfigUpdate replaces the anonymization configuration.
func ComplianceConfigUpdate(c *fiber.Ctx) error {
	var req types.UpdateAnonymizationConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Level == "" {
		return response.BadRequest(c, "level is required")
	}

	cfg, err := svc.Ctx.Compliance.UpdateConfig(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, cfg)
}

// ComplianceTest runs a sample payload through the anonymizer.
func ComplianceTest(c *fiber.Ctx) error {
	var req types.TestAnonymizeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Data == nil {
		return response.BadRequest(c, "data is required")
	}

	out, err := svc.Ctx.Compliance.TestAnonymize(req.Data, req.Level)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, fiber.Map{"anonymized": out})
}

// ComplianceCheck scans a string for sensitive content.
func ComplianceCheck(c *fiber.Ctx) error {
	var req types.CheckSensitiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Text == "" {
		return response.BadRequest(c, "text is required")
	}

	return response.OK(c, types.SensitiveCheckInfo{
		Sensitive: svc.Ctx.Compliance.CheckString(req.Text),
	})
}
