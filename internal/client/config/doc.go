// Package config loads runtime configuration for the pdftranslator CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. PDFTR_* environment variables, optionally loaded from a dotenv file
//     given with -e or -env (./.env is picked up when present).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   local database path
//	-k string   device key file
//	-t int      request timeout (seconds)
//	-r int      token refresh interval (minutes)
//	-m int      model context window (tokens)
//	-l string   log level
//
// # JSON schema
//
// Durations accept strings like "500ms" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "request_timeout": "2m",
//	  "refresh_interval": "14m",
//	  "range_debounce": "500ms",
//	  "max_tokens": 16384,
//	  "token_budget_ratio": 0.5,
//	  "log_format": "zap"
//	}
package config
