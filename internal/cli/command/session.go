package command

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/handoff-go/internal/lifecycle"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Report local sign-in changes",
		Subcommands: []*cli.Command{
			{
				Name:  "signin",
				Usage: "Record a sign-in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "method",
						Aliases: []string{"m"},
						Usage:   "Auth method (wallet, email, oauth)",
						Value:   "wallet",
					},
				},
				Action: sessionSignIn,
			},
			{
				Name:   "signout",
				Usage:  "Record a sign-out (resets recovery, clears the wallet snapshot)",
				Action: sessionSignOut,
			},
		},
	}
}

type sessionView struct {
	SignedIn bool   `json:"signed_in"`
	Method   string `json:"method,omitempty"`
}

func sessionSignIn(c *cli.Context) error {
	var s sessionView
	if err := call(c, http.MethodPost, "/v1/session/signin", map[string]string{"method": c.String("method")}, &s); err != nil {
		return err
	}
	return render(c, s)
}

func sessionSignOut(c *cli.Context) error {
	var s sessionView
	if err := call(c, http.MethodPost, "/v1/session/signout", nil, &s); err != nil {
		return err
	}
	return render(c, s)
}

// EventCommand returns the event command.
func EventCommand() *cli.Command {
	return &cli.Command{
		Name:      "event",
		Usage:     "Publish a lifecycle event (visible, hidden, focus, storage)",
		ArgsUsage: "EVENT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "Mutated storage key (storage events only)",
			},
		},
		Action: eventPublish,
	}
}

func eventPublish(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one EVENT argument is required", 2)
	}
	kind, err := lifecycle.ParseKind(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	var body any
	if key := c.String("key"); key != "" {
		body = map[string]string{"key": key}
	}
	if err := call(c, http.MethodPost, "/v1/lifecycle/"+kind.String(), body, nil); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s event published\n", kind)
	return nil
}
