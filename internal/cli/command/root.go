// Package command provides the handoffctl command tree.
//
// Every command talks to a running handoffd over its host bridge API;
// the Badger store is single-process and is never opened here.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/handoff-go/internal/bridge"
	"github.com/yndnr/handoff-go/internal/cli/output"
	"github.com/yndnr/handoff-go/internal/infra/buildinfo"
)

// DefaultServer is the default handoffd address.
const DefaultServer = "http://127.0.0.1:7380"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "handoffctl",
		Usage:   "Inspect and drive a running handoffd",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			MarkerCommand(),
			WalletCommand(),
			RecoveryCommand(),
			SessionCommand(),
			EventCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "handoffd base URL",
			EnvVars: []string{"HANDOFF_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: 10 * time.Second,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  format,
		Timeout: c.Duration("timeout"),
	}
}

// envelope is the handoffd response envelope.
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call sends one request to handoffd and decodes the envelope data into
// out (when non-nil).
func call(c *cli.Context, method, path string, body, out any) error {
	flags := ParseGlobalFlags(c)
	client := bridge.NewHTTPClient(flags.Server, flags.Timeout)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, flags.Timeout)
	defer cancel()

	var env envelope
	if err := client.Do(ctx, method, path, body, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// isNotFound reports whether err is a 404 from handoffd.
func isNotFound(err error) bool {
	var se *bridge.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// notFound reports an absent record with exit code 3.
func notFound(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), 3)
}

// render prints data in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output).Format(c.App.Writer, data)
}
