package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   backend base URL
//	-d string   local database path
//	-k string   device key file
//	-t int      request timeout (seconds)
//	-r int      proactive token refresh interval (minutes)
//	-m int      model context window in tokens
//	-l string   log level
//
// Only the flags above are taken from os.Args; -c/-config and -e/-env are
// read by their own loaders.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-t", "-r", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "device key file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	refresh := fs.Int("r", int(cfg.RefreshInterval.Minutes()), "token refresh interval (in minutes)")
	fs.IntVar(&cfg.MaxTokens, "m", cfg.MaxTokens, "model context window (in tokens)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t and -r count whole units; values from env or JSON stay untouched
	// unless the flag was given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "r":
			cfg.RefreshInterval = time.Duration(*refresh) * time.Minute
		}
	})
}
