package svc

import (
	"flowpulse/internal/alerting"
	"flowpulse/internal/analytics"
	"flowpulse/internal/config"
	"flowpulse/internal/environment"
	"flowpulse/internal/gitstore"
	"flowpulse/internal/logic"
	"flowpulse/internal/orchestrator"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceContext wires the shared components and the per-resource logic.
type ServiceContext struct {
	Config *config.Config
	DB     *gorm.DB

	Git          *gitstore.Store
	Env          *environment.Router
	Orchestrator *orchestrator.Client
	Analytics    *analytics.Engine
	Alerts       *alerting.Engine

	Workflows  *logic.WorkflowLogic
	Versions   *logic.VersionLogic
	Executions *logic.ExecutionLogic
	AlertLogic *logic.AlertLogic
	Health     *logic.HealthLogic
	Metrics    *logic.MetricsLogic
	Templates  *logic.TemplateLogic
	Compliance *logic.ComplianceLogic
}

// Ctx is the global service context, set by Init.
var Ctx *ServiceContext

// Init builds every component and the logic layer on top of them.
func Init(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) error {
	store, err := gitstore.Open(gitstore.Options{
		RepoPath:      cfg.Git.RepoPath,
		DefaultBranch: cfg.Git.DefaultBranch,
		AuthorName:    cfg.Git.AuthorName,
		AuthorEmail:   cfg.Git.AuthorEmail,
	})
	if err != nil {
		return err
	}

	env, err := environment.NewRouter(db, cfg.Environments)
	if err != nil {
		return err
	}

	orch := orchestrator.NewClient(env)
	alerts := alerting.NewEngine(db, cfg.Alerting)

	compliance, err := logic.NewComplianceLogic(db, cfg.Anonymizer)
	if err != nil {
		return err
	}

	executions := logic.NewExecutionLogic(db, alerts, compliance)
	engine := analytics.NewEngine(cfg.Analytics, redisClient)

	Ctx = &ServiceContext{
		Config:       cfg,
		DB:           db,
		Git:          store,
		Env:          env,
		Orchestrator: orch,
		Analytics:    engine,
		Alerts:       alerts,
		Workflows:    logic.NewWorkflowLogic(db, orch),
		Versions:     logic.NewVersionLogic(db, store),
		Executions:   executions,
		AlertLogic:   logic.NewAlertLogic(db, alerts),
		Health:       logic.NewHealthLogic(db, orch, alerts),
		Metrics:      logic.NewMetricsLogic(db, engine, executions),
		Templates:    logic.NewTemplateLogic(db),
		Compliance:   compliance,
	}
	return nil
}
