package command

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/handoff-go/internal/authsync"
	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/core/service"
	"github.com/yndnr/handoff-go/internal/lifecycle"
	"github.com/yndnr/handoff-go/internal/recovery"
	"github.com/yndnr/handoff-go/internal/server/httpserver"
	"github.com/yndnr/handoff-go/internal/server/httpserver/handler"
	"github.com/yndnr/handoff-go/internal/storage/memory"
)

// stubRecovery is a handler.Recovery that starts one attempt and
// reports it as recovering.
type stubRecovery struct {
	state domain.RecoveryState
}

func (s *stubRecovery) Evaluate(_ context.Context, primary recovery.PrimaryState, _ recovery.AuthMethod) bool {
	if !primary.Valid || s.state.Attempted {
		return false
	}
	s.state.Attempted = true
	s.state.Phase = domain.PhaseFailed
	s.state.LastError = "popup blocked"
	return true
}
func (s *stubRecovery) NeedsReconnection() bool        { return s.state.Phase == domain.PhaseFailed }
func (s *stubRecovery) Dismiss()                       { s.state.Dismissed = true }
func (s *stubRecovery) Reset()                         { s.state = domain.RecoveryState{} }
func (s *stubRecovery) Snapshot() domain.RecoveryState { return s.state }

// testDaemon is an in-process handoffd API.
type testDaemon struct {
	*httptest.Server
	bus     *lifecycle.Bus
	markers *service.MarkerStore
}

func newTestDaemon(t *testing.T, withRecovery bool) *testDaemon {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := memory.New()
	markers := service.NewMarkerStore(engine, nil, logger, nil)
	bus := lifecycle.NewBus()

	deps := handler.Deps{
		Markers: markers,
		Trackers: []*service.HandoffTracker{
			service.WalletConnectHandoff(markers, 0),
			service.PaymentHandoff(markers, 0).HandoffTracker,
		},
		Wallet:  service.NewWalletCache(engine, nil, logger, nil, 0),
		Events:  bus,
		Session: authsync.NewMemoryState(),
	}
	if withRecovery {
		deps.Recovery = &stubRecovery{}
	}

	srv := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{Deps: deps, Logger: logger}))
	t.Cleanup(srv.Close)
	return &testDaemon{Server: srv, bus: bus, markers: markers}
}

// run executes handoffctl against d and returns stdout, stderr and the
// action error.
func run(t *testing.T, d *testDaemon, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := append([]string{"handoffctl", "--server", d.URL}, args...)
	err := app.Run(full)
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}
