package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/handoff-go/internal/config"
)

// printConfig writes the sanitized effective configuration as YAML.
func printConfig(c *cli.Context, cfg *config.Config) error {
	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(config.Sanitize(cfg)); err != nil {
		return err
	}
	return enc.Close()
}
