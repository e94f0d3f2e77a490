package command

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yndnr/handoff-go/internal/lifecycle"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "handoffctl" {
		t.Errorf("Name = %q, want handoffctl", app.Name)
	}

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"marker", "wallet", "recovery", "session", "event", "version"} {
		if !names[want] {
			t.Errorf("missing command %q", want)
		}
	}
}

func TestApp_RejectsUnknownOutput(t *testing.T) {
	d := newTestDaemon(t, false)
	if _, _, err := run(t, d, "-o", "xml", "version"); err == nil {
		t.Error("Run() error = nil, want unknown format error")
	}
}

func TestMarker_MarkReadClear(t *testing.T) {
	d := newTestDaemon(t, false)

	out, _, err := run(t, d, "-o", "json", "marker", "mark",
		"--set", "provider=moonpay", "--payload", `{"partner_reference":"ref-9"}`, "external-payment")
	if err != nil {
		t.Fatalf("mark error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	payload, _ := m["payload"].(map[string]any)
	if payload["provider"] != "moonpay" || payload["partner_reference"] != "ref-9" {
		t.Errorf("payload = %v, want provider and partner_reference", payload)
	}

	out, _, err = run(t, d, "marker", "read", "external-payment")
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if !strings.Contains(out, "KIND") || !strings.Contains(out, "external-payment") {
		t.Errorf("table output = %q", out)
	}

	out, _, err = run(t, d, "marker", "clear", "external-payment")
	if err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if !strings.Contains(out, "cleared") {
		t.Errorf("clear output = %q", out)
	}

	_, _, err = run(t, d, "marker", "read", "external-payment")
	if exitCode(err) != 3 {
		t.Errorf("read after clear exit code = %d (%v), want 3", exitCode(err), err)
	}
}

func TestMarker_MarkCustomKindNeedsTTL(t *testing.T) {
	d := newTestDaemon(t, false)

	if _, _, err := run(t, d, "marker", "mark", "custom"); err == nil {
		t.Error("mark without ttl error = nil, want 400")
	}
	if _, _, err := run(t, d, "marker", "mark", "--ttl", "2m", "custom"); err != nil {
		t.Errorf("mark with ttl error = %v", err)
	}
	if _, ok := d.markers.Read(context.Background(), "custom"); !ok {
		t.Error("custom marker not stored")
	}
}

func TestMarker_ArgumentErrors(t *testing.T) {
	d := newTestDaemon(t, false)

	tests := []struct {
		name string
		args []string
	}{
		{"read without kind", []string{"marker", "read"}},
		{"bad set", []string{"marker", "mark", "--set", "novalue", "wallet-connect"}},
		{"bad payload", []string{"marker", "mark", "--payload", "[1]", "wallet-connect"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, d, tt.args...)
			if exitCode(err) != 2 {
				t.Errorf("exit code = %d (%v), want 2", exitCode(err), err)
			}
		})
	}
}

func TestMarker_ListAndResolve(t *testing.T) {
	d := newTestDaemon(t, false)

	_, _, err := run(t, d, "marker", "resolve")
	if exitCode(err) != 3 {
		t.Errorf("empty resolve exit code = %d, want 3", exitCode(err))
	}

	run(t, d, "marker", "mark", "--set", "origin=/swap", "wallet-connect")
	out, _, err := run(t, d, "-o", "yaml", "marker", "resolve")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	if !strings.Contains(out, "kind: wallet-connect") {
		t.Errorf("yaml output = %q", out)
	}

	out, _, err = run(t, d, "marker", "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "wallet-connect") || !strings.Contains(out, "5m0s") {
		t.Errorf("list output = %q", out)
	}
}

func TestWallet(t *testing.T) {
	d := newTestDaemon(t, false)

	_, _, err := run(t, d, "wallet", "get")
	if exitCode(err) != 3 {
		t.Errorf("empty get exit code = %d, want 3", exitCode(err))
	}

	out, _, err := run(t, d, "wallet", "set", "--address", "0xAbC0000000000000000000000000000000000001", "--chain-id", "8453")
	if err != nil {
		t.Fatalf("set error = %v", err)
	}
	if !strings.Contains(out, "8453") {
		t.Errorf("set output = %q", out)
	}

	if _, _, err := run(t, d, "wallet", "clear"); err != nil {
		t.Fatalf("clear error = %v", err)
	}
	_, _, err = run(t, d, "wallet", "get")
	if exitCode(err) != 3 {
		t.Errorf("get after clear exit code = %d, want 3", exitCode(err))
	}
}

func TestSessionAndRecovery(t *testing.T) {
	d := newTestDaemon(t, true)

	if _, _, err := run(t, d, "session", "signin", "--method", "wallet"); err != nil {
		t.Fatalf("signin error = %v", err)
	}

	out, _, err := run(t, d, "-o", "json", "recovery", "evaluate")
	if err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	var r recoveryView
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if r.Started == nil || !*r.Started {
		t.Errorf("Started = %v, want true", r.Started)
	}
	if !r.NeedsReconnection {
		t.Error("NeedsReconnection = false, want true")
	}

	out, _, err = run(t, d, "recovery", "dismiss")
	if err != nil {
		t.Fatalf("dismiss error = %v", err)
	}
	if !strings.Contains(out, "dismissed") || !strings.Contains(out, "popup blocked") {
		t.Errorf("dismiss output = %q", out)
	}

	if _, _, err := run(t, d, "session", "signout"); err != nil {
		t.Fatalf("signout error = %v", err)
	}
	out, _, _ = run(t, d, "-o", "json", "recovery", "status")
	if !strings.Contains(out, `"phase": "idle"`) {
		t.Errorf("status after signout = %q, want idle", out)
	}
}

func TestRecovery_Disabled(t *testing.T) {
	d := newTestDaemon(t, false)
	if _, _, err := run(t, d, "recovery", "status"); err == nil {
		t.Error("status error = nil, want 503")
	}
}

func TestEvent(t *testing.T) {
	d := newTestDaemon(t, false)

	out, _, err := run(t, d, "event", "--key", "auth/session", "storage")
	if err != nil {
		t.Fatalf("event error = %v", err)
	}
	if !strings.Contains(out, "storage event published") {
		t.Errorf("output = %q", out)
	}

	select {
	case ev := <-d.bus.Events():
		want := lifecycle.Event{Kind: lifecycle.KindStorageMutation, Key: "auth/session"}
		if ev != want {
			t.Errorf("event = %+v, want %+v", ev, want)
		}
	default:
		t.Fatal("no event published")
	}

	_, _, err = run(t, d, "event", "resize")
	if exitCode(err) != 2 {
		t.Errorf("unknown event exit code = %d, want 2", exitCode(err))
	}
}

func TestVersion(t *testing.T) {
	d := newTestDaemon(t, false)
	out, _, err := run(t, d, "-o", "json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, `"version"`) {
		t.Errorf("output = %q", out)
	}
}

func TestParsePayload(t *testing.T) {
	got, err := parsePayload(`{"a":1}`, []string{"a=override", "b=2"})
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}
	if got["a"] != "override" || got["b"] != "2" {
		t.Errorf("parsePayload() = %v", got)
	}

	empty, err := parsePayload("", nil)
	if err != nil || empty != nil {
		t.Errorf("parsePayload(empty) = %v, %v, want nil, nil", empty, err)
	}
}
