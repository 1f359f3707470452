package logic

import (
	"errors"
	"sync"

	"flowpulse/internal/anonymizer"
	"flowpulse/internal/config"
	"flowpulse/internal/model"
	"flowpulse/internal/types"

	"gorm.io/gorm"
)

// ComplianceLogic owns the anonymization configuration and the Anonymizer
// built from it. The single config row is seeded at startup and the built
// anonymizer is cached until the configuration changes.
type ComplianceLogic struct {
	db *gorm.DB

	mu     sync.RWMutex
	cached *anonymizer.Anonymizer
}

// NewComplianceLogic loads (or seeds) the configuration row and builds the
// initial anonymizer.
func NewComplianceLogic(db *gorm.DB, seed config.AnonymizerConfig) (*ComplianceLogic, error) {
	l := &ComplianceLogic{db: db}

	var cfg model.AnonymizationConfig
	err := db.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		level := seed.Level
		if level == "" {
			level = model.AnonLevelPartial
		}
		cfg = model.AnonymizationConfig{
			Level:          level,
			PreserveFormat: seed.PreserveFormat,
			HashSalt:       seed.HashSalt,
			Fields:         types.JSONString(seed.Fields),
		}
		if err := db.Create(&cfg).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	l.cached = anonymizer.FromModel(&cfg)
	return l, nil
}

// Anonymizer returns the anonymizer for the current configuration.
func (l *ComplianceLogic) Anonymizer() *anonymizer.Anonymizer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cached
}

// GetConfig returns the persisted configuration row.
func (l *ComplianceLogic) GetConfig() (*model.AnonymizationConfig, error) {
	var cfg model.AnonymizationConfig
	if err := l.db.First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig replaces the configuration and rebuilds the anonymizer.
func (l *ComplianceLogic) UpdateConfig(req *types.UpdateAnonymizationConfigRequest) (*model.AnonymizationConfig, error) {
	switch req.Level {
	case model.AnonLevelNone, model.AnonLevelPartial, model.AnonLevelFull:
	default:
		return nil, ErrInvalidAnonymizeLevel
	}

	cfg, err := l.GetConfig()
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"level": req.Level}
	if req.PreserveFormat != nil {
		updates["preserve_format"] = *req.PreserveFormat
	}
	if req.HashSalt != "" {
		updates["hash_salt"] = req.HashSalt
	}
	if req.Fields != nil {
		updates["fields"] = types.JSONString(req.Fields)
	}
	if err := l.db.Model(cfg).Updates(updates).Error; err != nil {
		return nil, err
	}

	cfg, err = l.GetConfig()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cached = anonymizer.FromModel(cfg)
	l.mu.Unlock()

	return cfg, nil
}

// TestAnonymize runs a sample payload through the current anonymizer,
// optionally at an overridden level.
func (l *ComplianceLogic) TestAnonymize(data any, level string) (any, error) {
	if level != "" {
		switch level {
		case model.AnonLevelNone, model.AnonLevelPartial, model.AnonLevelFull:
		default:
			return nil, ErrInvalidAnonymizeLevel
		}
	}
	return l.Anonymizer().AnonymizeObject(data, level), nil
}

// CheckString reports whether a string contains sensitive content.
func (l *ComplianceLogic) CheckString(text string) bool {
	return l.Anonymizer().ContainsSensitiveData(text)
}
