// Package main provides the entry point for handoffd.
//
// handoffd keeps pending-handoff markers and the wallet snapshot in a
// durable store, reconciles the primary and secondary sessions on
// lifecycle signals, and serves the host bridge HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/handoff-go/internal/app"
	"github.com/yndnr/handoff-go/internal/config"
	"github.com/yndnr/handoff-go/internal/infra/buildinfo"
	"github.com/yndnr/handoff-go/internal/infra/confloader"
	"github.com/yndnr/handoff-go/internal/telemetry/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "handoffd",
		Usage:   "Pending-operation and session-recovery daemon",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"HANDOFF_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Host bridge listen address (overrides server.addr)",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Data directory (overrides storage.data_dir)",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep state in memory only",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  "print-config",
				Usage: "Print the effective configuration and exit",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	loader := confloader.NewLoader(confloader.WithConfigFile(c.String("config")))
	loader.LoadMap(flagOverrides(c))

	cfg, err := loadConfig(loader)
	if err != nil {
		return err
	}

	if c.Bool("print-config") {
		return printConfig(c, cfg)
	}

	log := logger.NewSlog(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	logger.SetDefault(logger.Wrap(log))

	info := buildinfo.Get()
	log.Info("starting handoffd",
		"version", info.Version,
		"commit", info.Commit,
		"config", loader.FilePath(),
		"config_effective", config.Sanitize(cfg),
	)

	a, err := app.New(cfg, app.WithLogger(log), app.WithConfigLoader(loader))
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.Run(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("handoffd stopped")
	return nil
}

// flagOverrides maps set command-line flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	if c.IsSet("addr") {
		overrides["server.addr"] = c.String("addr")
	}
	if c.IsSet("data-dir") {
		overrides["storage.data_dir"] = c.String("data-dir")
	}
	if c.IsSet("ephemeral") {
		overrides["storage.ephemeral"] = c.Bool("ephemeral")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	return overrides
}

// loadConfig loads defaults, the config file, the environment and flag
// overrides, then validates the result.
func loadConfig(loader *confloader.Loader) (*config.Config, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
