package router

import (
	"flowpulse/internal/handler"
	"flowpulse/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

// Setup registers every route.
func Setup(app *fiber.App) {
	app.Use(middleware.CORS(), middleware.RequestID(), middleware.Logger(), middleware.Recover())

	api := app.Group("/api/v1")

	// Workflow metadata
	w := api.Group("/workflows")
	w.Get("", handler.WorkflowList)
	w.Post("", handler.WorkflowCreate)
	w.Post("/sync", handler.WorkflowSync)
	w.Get("/:workflowId", handler.WorkflowGet)
	w.Put("/:workflowId", handler.WorkflowUpdate)
	w.Delete("/:workflowId", handler.WorkflowDelete)

	// Per-workflow operations
	w.Get("/:workflowId/metrics", handler.MetricsGet)
	w.Post("/:workflowId/metrics/recompute", handler.MetricsRecompute)
	w.Get("/:workflowId/analytics", handler.AnalyticsReport)
	w.Post("/:workflowId/health-check", handler.HealthRun)
	w.Get("/:workflowId/alert-config", handler.AlertConfigGet)
	w.Put("/:workflowId/alert-config", handler.AlertConfigUpsert)
	w.Delete("/:workflowId/alert-config", handler.AlertConfigDelete)

	// Versions
	v := api.Group("/versions")
	v.Get("", handler.VersionList)
	v.Post("", handler.VersionCreate)
	v.Get("/:id", handler.VersionGet)
	v.Post("/:id/activate", handler.VersionActivate)
	v.Delete("/:id", handler.VersionDelete)

	// Definition repository
	g := api.Group("/git")
	g.Get("/history/:workflowId", handler.GitHistory)
	g.Get("/branches", handler.GitBranches)
	g.Post("/branches", handler.GitCreateBranch)
	g.Delete("/branches/:name", handler.GitDeleteBranch)
	g.Get("/tags", handler.GitTags)
	g.Post("/tags", handler.GitCreateTag)
	g.Get("/diff/:workflowId", handler.GitDiff)
	g.Get("/content/:workflowId/:commit", handler.GitContent)
	g.Post("/commit", handler.GitCommit)
	g.Post("/merge", handler.GitMerge)
	g.Post("/rollback", handler.GitRollback)

	// Executions and logs
	e := api.Group("/executions")
	e.Get("", handler.ExecutionList)
	e.Post("", handler.ExecutionCreate)
	e.Get("/:id", handler.ExecutionGet)
	e.Put("/:id", handler.ExecutionUpdate)
	e.Get("/:id/logs", handler.ExecutionLogs)
	e.Post("/:id/logs", handler.ExecutionAppendLog)

	// Health-check history
	api.Get("/health-checks", handler.HealthList)

	// Alerts
	a := api.Group("/alerts")
	a.Get("", handler.AlertList)
	a.Post("", handler.AlertCreate)
	a.Get("/:id", handler.AlertGet)
	a.Post("/:id/send", handler.AlertSend)
	a.Post("/:id/acknowledge", handler.AlertAcknowledge)

	// Templates
	t := api.Group("/templates")
	t.Get("", handler.TemplateList)
	t.Post("", handler.TemplateCreate)
	t.Get("/:id", handler.TemplateGet)
	t.Put("/:id", handler.TemplateUpdate)
	t.Delete("/:id", handler.TemplateDelete)
	t.Post("/:id/rate", handler.TemplateRate)

	// Compliance
	cp := api.Group("/compliance")
	cp.Get("/config", handler.ComplianceConfigGet)
	cp.Put("/config", handler.ComplianceConfigUpdate)
	cp.Post("/test", handler.ComplianceTest)
	cp.Post("/check", handler.ComplianceCheck)

	// Environments
	env := api.Group("/environments")
	env.Get("", handler.EnvironmentList)
	env.Get("/current", handler.EnvironmentCurrent)
	env.Post("/switch", handler.EnvironmentSwitch)
	env.Post("/:type/test", handler.EnvironmentTest)
	env.Get("/:type/validate", handler.EnvironmentValidate)
}
