package command

import (
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/handoff-go/internal/cli/output"
	"github.com/yndnr/handoff-go/internal/core/domain"
)

type recoveryView struct {
	State             domain.RecoveryState `json:"state"`
	Phase             string               `json:"phase"`
	NeedsReconnection bool                 `json:"needs_reconnection"`
	Started           *bool                `json:"started,omitempty"`
}

// Table implements output.Tabular.
func (r recoveryView) Table() *output.Table {
	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("phase", r.Phase)
	t.AddRow("attempted", fmt.Sprintf("%t", r.State.Attempted))
	t.AddRow("needs_reconnection", fmt.Sprintf("%t", r.NeedsReconnection))
	t.AddRow("dismissed", fmt.Sprintf("%t", r.State.Dismissed))
	if r.Started != nil {
		t.AddRow("started", fmt.Sprintf("%t", *r.Started))
	}
	if r.State.LastError != "" {
		t.AddRow("last_error", r.State.LastError)
	}
	return t
}

// RecoveryCommand returns the recovery subcommand group.
func RecoveryCommand() *cli.Command {
	return &cli.Command{
		Name:  "recovery",
		Usage: "Inspect and drive secondary session recovery",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the recovery state",
				Action: recoveryAction(http.MethodGet, "/v1/recovery"),
			},
			{
				Name:  "evaluate",
				Usage: "Start an attempt if the entry condition holds",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "wait",
						Usage: "Poll until the attempt settles, up to this long",
					},
				},
				Action: recoveryEvaluate,
			},
			{
				Name:   "dismiss",
				Usage:  "Hide the reconnect affordance",
				Action: recoveryAction(http.MethodPost, "/v1/recovery/dismiss"),
			},
			{
				Name:   "reset",
				Usage:  "Return recovery to idle",
				Action: recoveryAction(http.MethodPost, "/v1/recovery/reset"),
			},
		},
	}
}

func recoveryAction(method, path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		var r recoveryView
		if err := call(c, method, path, nil, &r); err != nil {
			return err
		}
		return render(c, r)
	}
}

func recoveryEvaluate(c *cli.Context) error {
	var r recoveryView
	if err := call(c, http.MethodPost, "/v1/recovery/evaluate", nil, &r); err != nil {
		return err
	}

	wait := c.Duration("wait")
	if wait <= 0 || r.Phase != domain.PhaseRecovering.String() {
		return render(c, r)
	}

	started := r.Started
	deadline := time.Now().Add(wait)
	for r.Phase == domain.PhaseRecovering.String() && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
		if err := call(c, http.MethodGet, "/v1/recovery", nil, &r); err != nil {
			return err
		}
	}
	r.Started = started
	return render(c, r)
}
