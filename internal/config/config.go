// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DrawStrategyGreedy       = "greedy"
	DrawStrategyBacktracking = "backtracking"

	defaultDrawRequestsCron  = "*/1 * * * *"
	defaultDrawCooldown      = 5 * time.Second
	defaultDrawMaxPerHour    = 60
	defaultDrawMaxIPPerHour  = 240
	defaultDrawRequestsBatch = 10
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type DrawConfig struct {
	// Strategy selects the per-round pairing search: "greedy" or "backtracking".
	Strategy string `yaml:"strategy"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
	// LogEvents mirrors every draw log entry to the application logger at debug level.
	LogEvents bool `yaml:"log_events"`
}

type SchedulerConfig struct {
	DrawRequestsCron  string `yaml:"draw_requests_cron"`
	DrawRequestsBatch int64  `yaml:"draw_requests_batch"`
}

type RateLimitConfig struct {
	DrawCooldown     time.Duration `yaml:"draw_cooldown"`
	DrawMaxPerHour   int           `yaml:"draw_max_per_hour"`
	DrawMaxIPPerHour int           `yaml:"draw_max_ip_per_hour"`
	// TrustProxy reads the client IP from X-Forwarded-For / X-Real-IP when the
	// peer is on a private network.
	TrustProxy bool `yaml:"trust_proxy"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Draw DrawConfig `yaml:"draw"`

	Scheduler SchedulerConfig `yaml:"scheduler"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Features struct {
		EnableScheduler bool `yaml:"enable_scheduler"`
		EnableDebug     bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if override := os.Getenv("DATABASE_FILENAME"); override != "" {
		cfg.Database.Filename = override
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Draw.Strategy == "" {
		c.Draw.Strategy = DrawStrategyGreedy
	}
	if c.Scheduler.DrawRequestsCron == "" {
		c.Scheduler.DrawRequestsCron = defaultDrawRequestsCron
	}
	if c.Scheduler.DrawRequestsBatch <= 0 {
		c.Scheduler.DrawRequestsBatch = defaultDrawRequestsBatch
	}
	if c.RateLimit.DrawCooldown <= 0 {
		c.RateLimit.DrawCooldown = defaultDrawCooldown
	}
	if c.RateLimit.DrawMaxPerHour <= 0 {
		c.RateLimit.DrawMaxPerHour = defaultDrawMaxPerHour
	}
	if c.RateLimit.DrawMaxIPPerHour <= 0 {
		c.RateLimit.DrawMaxIPPerHour = defaultDrawMaxIPPerHour
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Draw.Strategy {
	case DrawStrategyGreedy, DrawStrategyBacktracking:
	default:
		return fmt.Errorf("unsupported draw strategy: %s", c.Draw.Strategy)
	}

	if _, err := cron.ParseStandard(c.Scheduler.DrawRequestsCron); err != nil {
		return fmt.Errorf("invalid draw_requests_cron %q: %w", c.Scheduler.DrawRequestsCron, err)
	}

	return nil
}
