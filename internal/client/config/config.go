package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the pdftranslator CLI.
//
// Units: RequestTimeout, RefreshInterval, AlertTTL, RangeDebounce and
// EditDebounce are time.Duration values. TokenBudgetRatio is the share of
// MaxTokens a test translation may spend on extracted text.
type Config struct {
	ServerURL          string
	DatabasePath       string
	KeyFile            string
	ExportDir          string
	RequestTimeout     time.Duration
	RefreshInterval    time.Duration
	AlertTTL           time.Duration
	RangeDebounce      time.Duration
	EditDebounce       time.Duration
	MaxTokens          int
	TokenBudgetRatio   float64
	DefaultRangeWindow int
	PageSize           int
	LogFormat          string
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000"
	c.DatabasePath = "pdftranslator.db"
	c.KeyFile = "pdftranslator.key"
	c.ExportDir = "exports"
	c.RequestTimeout = 120 * time.Second
	c.RefreshInterval = 14 * time.Minute
	c.AlertTTL = 3 * time.Second
	c.RangeDebounce = 500 * time.Millisecond
	c.EditDebounce = 300 * time.Millisecond
	c.MaxTokens = 16384
	c.TokenBudgetRatio = 0.5
	c.DefaultRangeWindow = 2
	c.PageSize = 10
	c.LogFormat = "slog"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerURL == "" {
		errs = append(errs, errors.New("server url is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens))
	}
	if c.TokenBudgetRatio <= 0 || c.TokenBudgetRatio > 1 {
		errs = append(errs, fmt.Errorf("token budget ratio must be in (0,1], got %g", c.TokenBudgetRatio))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d", c.PageSize))
	}
	return errors.Join(errs...)
}
