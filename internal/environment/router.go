// Package environment routes outbound orchestrator calls to the right
// deployment target and guards cross-environment operations.
package environment

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"flowpulse/internal/config"
	"flowpulse/internal/model"
	"flowpulse/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApiKeyHeader carries the per-environment orchestrator credential.
const ApiKeyHeader = "X-Api-Key"

var (
	// ErrEnvironmentNotFound is returned for an unknown environment type.
	ErrEnvironmentNotFound = errors.New("environment not found")
	// ErrInvalidEnvironmentType is returned for a type outside
	// development/staging/production.
	ErrInvalidEnvironmentType = errors.New("invalid environment type")
	// ErrProductionConfirmRequired is returned when switching into
	// production without the explicit confirmation flag. Callers must
	// surface a confirmation gate before retrying with confirmed=true.
	ErrProductionConfirmRequired = errors.New("switching to production requires explicit confirmation")
)

// ConnectionResult reports one connectivity test.
type ConnectionResult struct {
	Environment string `json:"environment"`
	Success     bool   `json:"success"`
	StatusCode  int    `json:"statusCode,omitempty"`
	Latency     int64  `json:"latency"` // milliseconds
	Error       string `json:"error,omitempty"`
}

// Violation is one structured validation finding.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validType(envType string) bool {
	switch envType {
	case model.EnvDevelopment, model.EnvStaging, model.EnvProduction:
		return true
	}
	return false
}

// Router holds the environment registry and the single current selection.
// The selection is durable (environments.is_active) and cached in memory;
// a switch replaces the cached copy atomically under the lock so concurrent
// readers see either the old or the new environment, never a torn one.
type Router struct {
	db      *gorm.DB
	client  *fiber.Client
	timeout time.Duration

	mu      sync.RWMutex
	current model.Environment
}

// NewRouter seeds missing environment rows from configuration, restores the
// durable current selection, and defaults to development when none is set.
func NewRouter(db *gorm.DB, seeds []config.EnvironmentConfig) (*Router, error) {
	r := &Router{
		db:      db,
		client:  &fiber.Client{},
		timeout: 10 * time.Second,
	}

	for _, seed := range seeds {
		if !validType(seed.Type) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironmentType, seed.Type)
		}
		var existing model.Environment
		err := db.First(&existing, "type = ?", seed.Type).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			name := seed.Name
			if name == "" {
				name = seed.Type
			}
			env := model.Environment{
				Type:   seed.Type,
				Name:   name,
				ApiURL: seed.ApiURL,
				ApiKey: seed.ApiKey,
			}
			if err := db.Create(&env).Error; err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	}

	var current model.Environment
	err := db.First(&current, "is_active = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No durable selection yet: fall back to development, then to any
		// registered environment.
		err = db.First(&current, "type = ?", model.EnvDevelopment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = db.First(&current).Error
		}
		if err != nil {
			return nil, fmt.Errorf("no environments registered: %w", err)
		}
		if err := db.Model(&model.Environment{}).Where("id = ?", current.ID).Update("is_active", true).Error; err != nil {
			return nil, err
		}
		current.IsActive = true
	} else if err != nil {
		return nil, err
	}

	r.current = current
	return r, nil
}

// Current returns a copy of the current environment.
func (r *Router) Current() model.Environment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// List returns all registered environments.
func (r *Router) List() ([]model.Environment, error) {
	var envs []model.Environment
	if err := r.db.Order("type").Find(&envs).Error; err != nil {
		return nil, err
	}
	return envs, nil
}

// Switch changes the current selection for the whole process. Switching to
// production requires confirmed=true. The durable flag and the in-memory
// copy are updated together; subsequent calls observe the new environment.
func (r *Router) Switch(envType string, confirmed bool) (*model.Environment, error) {
	if !validType(envType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironmentType, envType)
	}
	if envType == model.EnvProduction && !confirmed {
		return nil, ErrProductionConfirmRequired
	}

	var target model.Environment
	if err := r.db.First(&target, "type = ?", envType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotFound, envType)
		}
		return nil, err
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Environment{}).Where("is_active = ?", true).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Environment{}).Where("id = ?", target.ID).Update("is_active", true).Error
	})
	if err != nil {
		return nil, err
	}
	target.IsActive = true

	r.mu.Lock()
	r.current = target
	r.mu.Unlock()

	logger.Info("environment switched", zap.String("type", envType))
	return &target, nil
}

// TestConnection performs a lightweight request against the environment's
// orchestrator API and reports the outcome plus latency. The current
// selection is not mutated.
func (r *Router) TestConnection(envType string) (*ConnectionResult, error) {
	var env model.Environment
	if err := r.db.First(&env, "type = ?", envType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotFound, envType)
		}
		return nil, err
	}

	result := &ConnectionResult{Environment: envType}

	agent := r.client.Get(env.ApiURL + "/workflows")
	agent.Timeout(r.timeout)
	if env.ApiKey != "" {
		agent.Set(ApiKeyHeader, env.ApiKey)
	}

	start := time.Now()
	code, _, errs := agent.Bytes()
	result.Latency = time.Since(start).Milliseconds()

	if len(errs) > 0 {
		result.Error = errs[0].Error()
		return result, nil
	}
	result.StatusCode = code
	result.Success = code >= 200 && code < 300
	if !result.Success {
		result.Error = fmt.Sprintf("orchestrator returned %d", code)
	}
	return result, nil
}

// ApiURL returns the current environment's orchestrator base URL.
func (r *Router) ApiURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.ApiURL
}

// ApiHeaders returns the headers for calls to the current environment,
// including the credential when present.
func (r *Router) ApiHeaders() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	if r.current.ApiKey != "" {
		headers[ApiKeyHeader] = r.current.ApiKey
	}
	return headers
}

// Validate checks the environment's URL and credential and returns the list
// of violations instead of failing. The credential is optional only for
// development.
func (r *Router) Validate(envType string) ([]Violation, error) {
	if !validType(envType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironmentType, envType)
	}

	var env model.Environment
	if err := r.db.First(&env, "type = ?", envType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotFound, envType)
		}
		return nil, err
	}

	violations := []Violation{}

	if env.ApiURL == "" {
		violations = append(violations, Violation{Field: "apiUrl", Message: "api url is required"})
	} else {
		parsed, err := url.Parse(env.ApiURL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			violations = append(violations, Violation{Field: "apiUrl", Message: "api url must be a valid http(s) url"})
		}
	}

	if env.ApiKey == "" && env.Type != model.EnvDevelopment {
		violations = append(violations, Violation{Field: "apiKey", Message: "credential is required outside development"})
	}

	return violations, nil
}
