package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-a", "http://10.0.0.2:5000", "-d", "x.db", "-k", "x.key", "-t", "30", "-r", "5", "-m", "8192", "-l", "debug"},
			expected: &Config{
				ServerURL:       "http://10.0.0.2:5000",
				DatabasePath:    "x.db",
				KeyFile:         "x.key",
				RequestTimeout:  30 * time.Second,
				RefreshInterval: 5 * time.Minute,
				MaxTokens:       8192,
				LogLevel:        "debug",
			}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-a", "http://h", "-e", ".env"},
			expected: &Config{ServerURL: "http://h"}},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
		{name: "incorrect token window", args: []string{"cmd", "-m", "lots"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_DurationsOnlyWhenGiven(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	cfg := Config{RequestTimeout: 1500 * time.Millisecond, RefreshInterval: 30 * time.Second}

	os.Args = []string{"cmd", "-a", "http://h"}
	parseFlags(&cfg)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)

	os.Args = []string{"cmd", "-r", "2"}
	parseFlags(&cfg)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
}

func TestParseFlags_KeepsCurrentValues(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	var cfg Config
	cfg.LoadDefaults()
	want := cfg

	parseFlags(&cfg)
	assert.Empty(t, cmp.Diff(want, cfg))
}
