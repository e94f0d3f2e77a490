package app

import (
	"context"
	"log/slog"

	"github.com/yndnr/handoff-go/internal/authsync"
	"github.com/yndnr/handoff-go/internal/bridge"
	"github.com/yndnr/handoff-go/internal/recovery"
)

// localPrimary stands in for the primary backend when none is
// configured: the host's own sign-in state is the session.
type localPrimary struct {
	state authsync.LocalState
}

func (p localPrimary) GetSession(context.Context) (*authsync.PrimarySession, error) {
	if !p.state.SignedIn() {
		return nil, nil
	}
	return &authsync.PrimarySession{}, nil
}

func (p localPrimary) RefreshSession(context.Context) error {
	return nil
}

// syncedFocus refreshes the provider status before forwarding a focus
// event, so the recovery entry condition sees current flags.
type syncedFocus struct {
	provider *bridge.SecondaryProvider
	machine  *recovery.Machine
	logger   *slog.Logger
}

func (f *syncedFocus) OnFocus(ctx context.Context, primary recovery.PrimaryState, method recovery.AuthMethod) bool {
	if err := f.provider.Sync(ctx); err != nil {
		f.logger.DebugContext(ctx, "secondary provider status refresh failed", "error", err)
	}
	return f.machine.OnFocus(ctx, primary, method)
}
