package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/pdftranslator/internal/buildinfo"
	"github.com/dmitrijs2005/pdftranslator/internal/client/cli"
	"github.com/dmitrijs2005/pdftranslator/internal/client/config"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	log := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "invalid configuration", "error", err)
		os.Exit(2)
	}
	if z, ok := log.(interface{ Sync() error }); ok {
		defer func() { _ = z.Sync() }()
	}

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
