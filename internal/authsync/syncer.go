package authsync

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/lifecycle"
	"github.com/yndnr/handoff-go/internal/recovery"
	"github.com/yndnr/handoff-go/internal/telemetry/metric"
)

// DefaultAuthNamespace is the storage key prefix owned by the primary
// auth client.
const DefaultAuthNamespace = "auth/"

// PrimarySession is a live primary backend session.
type PrimarySession struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PrimaryClient is the primary backend session client.
type PrimaryClient interface {
	// GetSession returns the live session, or nil if there is none.
	GetSession(ctx context.Context) (*PrimarySession, error)

	// RefreshSession re-establishes the session from stored credentials.
	RefreshSession(ctx context.Context) error
}

// LocalState is the app's own belief about the signed-in user.
type LocalState interface {
	// SignedIn reports whether the app believes a primary session exists.
	SignedIn() bool

	// AuthMethod returns the method the user signed in with.
	AuthMethod() recovery.AuthMethod
}

// FocusHandler receives focus events. *recovery.Machine implements it.
type FocusHandler interface {
	OnFocus(ctx context.Context, primary recovery.PrimaryState, method recovery.AuthMethod) bool
}

// Config configures a Syncer.
type Config struct {
	// AuthNamespace is the key prefix whose mutation forces a refresh.
	// Default: auth/
	AuthNamespace string
}

// Syncer routes lifecycle events to the primary session client and the
// recovery machine.
type Syncer struct {
	client  PrimaryClient
	local   LocalState
	focus   FocusHandler
	cfg     Config
	logger  *slog.Logger
	metrics *metric.Registry
}

// New creates a Syncer. focus, logger and metrics may be nil.
func New(client PrimaryClient, local LocalState, focus FocusHandler, cfg Config, logger *slog.Logger, metrics *metric.Registry) (*Syncer, error) {
	if client == nil {
		return nil, domain.ErrMissingArgument.WithDetails("primary client is required")
	}
	if local == nil {
		return nil, domain.ErrMissingArgument.WithDetails("local state is required")
	}
	if cfg.AuthNamespace == "" {
		cfg.AuthNamespace = DefaultAuthNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		client:  client,
		local:   local,
		focus:   focus,
		cfg:     cfg,
		logger:  logger.With("component", "authsync"),
		metrics: metrics,
	}, nil
}

// Run consumes src until ctx is done or src closes. Events are handled
// one at a time in arrival order.
func (s *Syncer) Run(ctx context.Context, src lifecycle.Source) error {
	s.logger.Info("auth sync started", "namespace", s.cfg.AuthNamespace)
	defer s.logger.Info("auth sync stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-src.Events():
			if !ok {
				return nil
			}
			s.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent processes one lifecycle event.
func (s *Syncer) HandleEvent(ctx context.Context, ev lifecycle.Event) {
	s.metrics.LifecycleEvent(ev.Kind.String())

	switch ev.Kind {
	case lifecycle.KindVisible:
		s.onVisible(ctx)
	case lifecycle.KindStorageMutation:
		s.onStorageMutation(ctx, ev.Key)
	case lifecycle.KindFocus:
		s.onFocus(ctx)
	case lifecycle.KindHidden:
		// nothing to reconcile while backgrounded
	}
}

func (s *Syncer) onVisible(ctx context.Context) {
	session, err := s.client.GetSession(ctx)
	if err != nil {
		s.metrics.Refresh("visibility", "error")
		s.logger.WarnContext(ctx, "primary session query failed",
			"code", domain.ErrPrimaryQueryFailed.Code,
			"error", err,
		)
		return
	}

	if session != nil || !s.local.SignedIn() {
		s.metrics.Refresh("visibility", "skipped")
		return
	}

	s.logger.InfoContext(ctx, "primary session lost while backgrounded, refreshing")
	s.refresh(ctx, "visibility")
}

func (s *Syncer) onStorageMutation(ctx context.Context, key string) {
	if !strings.HasPrefix(key, s.cfg.AuthNamespace) {
		return
	}
	s.logger.DebugContext(ctx, "auth storage changed in another context", "key", key)
	s.refresh(ctx, "storage")
}

func (s *Syncer) onFocus(ctx context.Context) {
	if s.focus == nil {
		return
	}
	primary := recovery.PrimaryState{Valid: s.local.SignedIn()}
	s.focus.OnFocus(ctx, primary, s.local.AuthMethod())
}

// refresh is the single refresh primitive behind both triggers.
func (s *Syncer) refresh(ctx context.Context, trigger string) {
	if err := s.client.RefreshSession(ctx); err != nil {
		s.metrics.Refresh(trigger, "error")
		s.logger.WarnContext(ctx, "primary session refresh failed",
			"trigger", trigger,
			"code", domain.ErrPrimaryRefreshFailed.Code,
			"error", err,
		)
		return
	}
	s.metrics.Refresh(trigger, "ok")
}
