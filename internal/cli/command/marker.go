package command

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/handoff-go/internal/cli/output"
	"github.com/yndnr/handoff-go/internal/core/domain"
)

// markerView is a marker as shown by handoffctl.
type markerView struct {
	domain.PendingMarker
}

func (m markerView) row() []string {
	created := time.UnixMilli(m.CreatedAt).UTC()
	return []string{
		m.Kind,
		m.ID,
		created.Format(time.RFC3339),
		(time.Duration(m.TTL) * time.Millisecond).String(),
		output.Cell(m.Payload),
	}
}

var markerHeaders = []string{"KIND", "ID", "CREATED", "TTL", "PAYLOAD"}

// Table implements output.Tabular.
func (m markerView) Table() *output.Table {
	return &output.Table{Headers: markerHeaders, Rows: [][]string{m.row()}}
}

type markerList struct {
	Markers []markerView `json:"markers"`
}

// Table implements output.Tabular.
func (l markerList) Table() *output.Table {
	t := &output.Table{Headers: markerHeaders}
	for _, m := range l.Markers {
		t.AddRow(m.row()...)
	}
	return t
}

// MarkerCommand returns the marker subcommand group.
func MarkerCommand() *cli.Command {
	return &cli.Command{
		Name:  "marker",
		Usage: "Manage pending handoff markers",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List live markers",
				Action: markerListAction,
			},
			{
				Name:      "read",
				Usage:     "Read a live marker",
				ArgsUsage: "KIND",
				Action:    markerRead,
			},
			{
				Name:      "mark",
				Usage:     "Record a pending handoff",
				ArgsUsage: "KIND",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "ttl",
						Aliases: []string{"t"},
						Usage:   "Marker TTL (default: the kind's tracker TTL)",
					},
					&cli.StringSliceFlag{
						Name:    "set",
						Aliases: []string{"d"},
						Usage:   "Payload entry as KEY=VALUE (repeatable)",
					},
					&cli.StringFlag{
						Name:  "payload",
						Usage: "Payload as a JSON object",
					},
				},
				Action: markerMark,
			},
			{
				Name:      "clear",
				Usage:     "Clear a marker",
				ArgsUsage: "KIND",
				Action:    markerClear,
			},
			{
				Name:   "resolve",
				Usage:  "Show the most recent live handoff",
				Action: markerResolve,
			},
		},
	}
}

func kindArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("exactly one KIND argument is required", 2)
	}
	return c.Args().First(), nil
}

func markerPath(kind string) string {
	return "/v1/markers/" + url.PathEscape(kind)
}

func markerListAction(c *cli.Context) error {
	var list markerList
	if err := call(c, http.MethodGet, "/v1/markers", nil, &list); err != nil {
		return err
	}
	return render(c, list)
}

func markerRead(c *cli.Context) error {
	kind, err := kindArg(c)
	if err != nil {
		return err
	}

	var m markerView
	if err := call(c, http.MethodGet, markerPath(kind), nil, &m); err != nil {
		if isNotFound(err) {
			return notFound("no live %s marker", kind)
		}
		return err
	}
	return render(c, m)
}

// parsePayload merges --payload and --set into one payload map.
// --set entries win.
func parsePayload(raw string, pairs []string) (map[string]any, error) {
	payload := map[string]any{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("--payload must be a JSON object: %w", err)
		}
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want KEY=VALUE", p)
		}
		payload[k] = v
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return payload, nil
}

func markerMark(c *cli.Context) error {
	kind, err := kindArg(c)
	if err != nil {
		return err
	}
	payload, err := parsePayload(c.String("payload"), c.StringSlice("set"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	body := map[string]any{}
	if payload != nil {
		body["payload"] = payload
	}
	if ttl := c.Duration("ttl"); ttl > 0 {
		body["ttl_ms"] = ttl.Milliseconds()
	}

	var m markerView
	if err := call(c, http.MethodPut, markerPath(kind), body, &m); err != nil {
		return err
	}
	if m.Kind == "" {
		fmt.Fprintf(c.App.ErrWriter, "warning: %s marker accepted but not readable (storage unavailable)\n", kind)
		return nil
	}
	return render(c, m)
}

func markerClear(c *cli.Context) error {
	kind, err := kindArg(c)
	if err != nil {
		return err
	}
	if err := call(c, http.MethodDelete, markerPath(kind), nil, nil); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s marker cleared\n", kind)
	return nil
}

func markerResolve(c *cli.Context) error {
	var res struct {
		Kind   string     `json:"kind"`
		Marker markerView `json:"marker"`
	}
	if err := call(c, http.MethodGet, "/v1/handoffs/resolve", nil, &res); err != nil {
		if isNotFound(err) {
			return notFound("no pending handoff")
		}
		return err
	}
	if ParseGlobalFlags(c).Output == output.FormatTable {
		return render(c, res.Marker)
	}
	return render(c, res)
}
