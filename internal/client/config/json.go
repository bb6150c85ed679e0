package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pdftranslator/internal/flagx"
	"github.com/dmitrijs2005/pdftranslator/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations go
// through timex.Duration, so "3s" and integer nanoseconds both work. Fields
// left out of the file (zero values) keep the current setting.
type JsonConfig struct {
	ServerURL          string         `json:"server_url"`
	DatabasePath       string         `json:"database_path"`
	KeyFile            string         `json:"key_file"`
	ExportDir          string         `json:"export_dir"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	RefreshInterval    timex.Duration `json:"refresh_interval"`
	AlertTTL           timex.Duration `json:"alert_ttl"`
	RangeDebounce      timex.Duration `json:"range_debounce"`
	EditDebounce       timex.Duration `json:"edit_debounce"`
	MaxTokens          int            `json:"max_tokens"`
	TokenBudgetRatio   float64        `json:"token_budget_ratio"`
	DefaultRangeWindow int            `json:"default_range_window"`
	PageSize           int            `json:"page_size"`
	LogFormat          string         `json:"log_format"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Without either flag nothing is loaded. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.KeyFile, jc.KeyFile)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshInterval.Duration > 0 {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.AlertTTL.Duration > 0 {
		cfg.AlertTTL = jc.AlertTTL.Duration
	}
	if jc.RangeDebounce.Duration > 0 {
		cfg.RangeDebounce = jc.RangeDebounce.Duration
	}
	if jc.EditDebounce.Duration > 0 {
		cfg.EditDebounce = jc.EditDebounce.Duration
	}
	if jc.MaxTokens > 0 {
		cfg.MaxTokens = jc.MaxTokens
	}
	if jc.TokenBudgetRatio > 0 && jc.TokenBudgetRatio <= 1 {
		cfg.TokenBudgetRatio = jc.TokenBudgetRatio
	}
	if jc.DefaultRangeWindow > 0 {
		cfg.DefaultRangeWindow = jc.DefaultRangeWindow
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
