package config

import (
	"os"
	"sync"
	"time"

	"flowpulse/pkg/database"
	"flowpulse/pkg/redis"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	App          AppConfig           `yaml:"app"`
	Server       ServerConfig        `yaml:"server"`
	Database     database.Config     `yaml:"database"`
	Redis        redis.Config        `yaml:"redis"`
	Log          LogConfig           `yaml:"log"`
	Git          GitConfig           `yaml:"git"`
	Environments []EnvironmentConfig `yaml:"environments"`
	Analytics    AnalyticsConfig     `yaml:"analytics"`
	Alerting     AlertingConfig      `yaml:"alerting"`
	Anonymizer   AnonymizerConfig    `yaml:"anonymizer"`
}

// AppConfig holds application identity.
type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"` // dev, test, prod
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`  // seconds
	WriteTimeout int    `yaml:"write_timeout"` // seconds
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, console
	Output     string `yaml:"output"` // stdout, file, both
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
}

// GitConfig holds the workflow definition repository settings.
type GitConfig struct {
	RepoPath      string `yaml:"repo_path"`
	DefaultBranch string `yaml:"default_branch"`
	AuthorName    string `yaml:"author_name"`
	AuthorEmail   string `yaml:"author_email"`
}

// EnvironmentConfig seeds one deployment environment at startup.
type EnvironmentConfig struct {
	Type   string `yaml:"type"` // development, staging, production
	Name   string `yaml:"name"`
	ApiURL string `yaml:"api_url"`
	ApiKey string `yaml:"api_key"`
}

// AnalyticsConfig holds performance-analysis settings.
type AnalyticsConfig struct {
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	SlowP95Threshold  time.Duration `yaml:"slow_p95_threshold"`
	ErrorRateCutoff   float64       `yaml:"error_rate_cutoff"`   // percent
	StaleSuccessAfter time.Duration `yaml:"stale_success_after"` // no successful run within this window
}

// UnmarshalYAML decodes durations from strings like "30s"; absent keys keep
// their current values.
func (c *AnalyticsConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		CacheTTL          string   `yaml:"cache_ttl"`
		SlowP95Threshold  string   `yaml:"slow_p95_threshold"`
		ErrorRateCutoff   *float64 `yaml:"error_rate_cutoff"`
		StaleSuccessAfter string   `yaml:"stale_success_after"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if err := parseDuration(raw.CacheTTL, &c.CacheTTL); err != nil {
		return err
	}
	if err := parseDuration(raw.SlowP95Threshold, &c.SlowP95Threshold); err != nil {
		return err
	}
	if err := parseDuration(raw.StaleSuccessAfter, &c.StaleSuccessAfter); err != nil {
		return err
	}
	if raw.ErrorRateCutoff != nil {
		c.ErrorRateCutoff = *raw.ErrorRateCutoff
	}
	return nil
}

// AlertingConfig holds alert dispatch settings.
type AlertingConfig struct {
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	CoalesceWindow  time.Duration `yaml:"coalesce_window"` // default per-workflow suppression window, 0 disables
}

// UnmarshalYAML decodes durations from strings like "10s"; absent keys keep
// their current values.
func (c *AlertingConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		DispatchTimeout string `yaml:"dispatch_timeout"`
		CoalesceWindow  string `yaml:"coalesce_window"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if err := parseDuration(raw.DispatchTimeout, &c.DispatchTimeout); err != nil {
		return err
	}
	return parseDuration(raw.CoalesceWindow, &c.CoalesceWindow)
}

func parseDuration(raw string, into *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*into = d
	return nil
}

// AnonymizerConfig holds compliance transformation settings.
type AnonymizerConfig struct {
	Level          string   `yaml:"level"` // none, partial, full
	HashSalt       string   `yaml:"hash_salt"`
	PreserveFormat bool     `yaml:"preserve_format"`
	Fields         []string `yaml:"fields"` // sensitive data types to transform
}

var (
	globalConfig *Config
	once         sync.Once
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "flowpulse",
			Version: "0.1.0",
			Env:     "dev",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5810,
		},
		Database: database.Config{
			Driver:   "sqlite",
			Database: "flowpulse.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Git: GitConfig{
			RepoPath:      "data/workflow-repo",
			DefaultBranch: "main",
			AuthorName:    "flowpulse",
			AuthorEmail:   "flowpulse@localhost",
		},
		Environments: []EnvironmentConfig{
			{Type: "development", Name: "local", ApiURL: "http://localhost:5678/api/v1"},
		},
		Analytics: AnalyticsConfig{
			CacheTTL:          5 * time.Minute,
			SlowP95Threshold:  30 * time.Second,
			ErrorRateCutoff:   10,
			StaleSuccessAfter: 24 * time.Hour,
		},
		Alerting: AlertingConfig{
			DispatchTimeout: 10 * time.Second,
		},
		Anonymizer: AnonymizerConfig{
			Level:          "partial",
			PreserveFormat: true,
			Fields:         []string{"email", "phone", "document", "notes"},
		},
	}
}

// Load reads the configuration file, falling back to defaults when the file
// does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			set(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	set(cfg)
	return cfg, nil
}

func set(cfg *Config) {
	once.Do(func() {
		globalConfig = cfg
	})
}

// Get returns the global configuration.
func Get() *Config {
	return globalConfig
}
