package recovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/telemetry/metric"
)

// SecondaryProvider is the secondary identity provider.
type SecondaryProvider interface {
	// Ready reports whether the provider finished initializing.
	Ready() bool

	// Authenticated reports whether the provider holds a session.
	Authenticated() bool

	// GetAccessToken silently refreshes the session and returns a token.
	GetAccessToken(ctx context.Context) (string, error)
}

// Config configures a Machine.
type Config struct {
	// Deferral is the delay between claiming the guard and calling the
	// provider, keeping the attempt off the first render.
	// Default: 300ms
	Deferral time.Duration

	// SecondaryMethod is the auth method served by the provider.
	// Default: wallet
	SecondaryMethod AuthMethod
}

// DefaultConfig returns the default recovery configuration.
func DefaultConfig() Config {
	return Config{
		Deferral:        300 * time.Millisecond,
		SecondaryMethod: AuthMethodWallet,
	}
}

// Machine is the secondary identity recovery state machine.
//
// Thread-safety: all methods are safe for concurrent use.
type Machine struct {
	provider SecondaryProvider
	cfg      Config
	clock    domain.Clock
	logger   *slog.Logger
	metrics  *metric.Registry

	// base is cancelled by Close and parents every attempt.
	base       context.Context
	baseCancel context.CancelFunc

	mu    sync.Mutex
	state domain.RecoveryState
	// generation changes on Reset and Close; an attempt finishing under
	// an older generation is discarded.
	generation uint64
	cancel     context.CancelFunc
	settled    chan struct{}
	closed     bool

	wg sync.WaitGroup
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// New creates a Machine. clock, logger and metrics may be nil.
func New(provider SecondaryProvider, cfg Config, clock domain.Clock, logger *slog.Logger, metrics *metric.Registry) (*Machine, error) {
	if provider == nil {
		return nil, domain.ErrMissingArgument.WithDetails("secondary provider is required")
	}
	if cfg.Deferral < 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("deferral must not be negative")
	}
	if cfg.SecondaryMethod == "" {
		cfg.SecondaryMethod = AuthMethodWallet
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	base, cancel := context.WithCancel(context.Background())
	return &Machine{
		provider:   provider,
		cfg:        cfg,
		clock:      clock,
		logger:     logger.With("component", "recovery"),
		metrics:    metrics,
		base:       base,
		baseCancel: cancel,
	}, nil
}

// Evaluate starts an attempt if NeedsRecovery holds for the current
// provider state. It returns true if this call claimed the guard.
// Callers that find an attempt already in flight no-op.
func (m *Machine) Evaluate(ctx context.Context, primary PrimaryState, method AuthMethod) bool {
	secondary := SecondaryStateOf(m.provider)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.state.Phase != domain.PhaseIdle {
		return false
	}
	if !NeedsRecovery(primary, secondary, method, m.cfg.SecondaryMethod, m.state.Attempted) {
		return false
	}
	m.beginLocked(ctx, "evaluate")
	return true
}

// OnFocus handles the app regaining focus.
//
// From Idle it behaves like Evaluate. From Failed it re-runs the guarded
// attempt once, unless the reconnect affordance was dismissed or the
// entry conditions (other than the attempted flag) no longer hold.
func (m *Machine) OnFocus(ctx context.Context, primary PrimaryState, method AuthMethod) bool {
	secondary := SecondaryStateOf(m.provider)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	switch m.state.Phase {
	case domain.PhaseIdle:
		if !NeedsRecovery(primary, secondary, method, m.cfg.SecondaryMethod, m.state.Attempted) {
			return false
		}
	case domain.PhaseFailed:
		if m.state.Dismissed {
			m.logger.Debug("focus retry skipped, reconnect dismissed")
			return false
		}
		if !NeedsRecovery(primary, secondary, method, m.cfg.SecondaryMethod, false) {
			return false
		}
	default:
		return false
	}

	m.beginLocked(ctx, "focus")
	return true
}

// beginLocked claims the guard and schedules the deferred attempt.
// m.mu must be held.
func (m *Machine) beginLocked(ctx context.Context, trigger string) {
	now := m.clock.Now()
	token := domain.NewGuardToken(now)

	m.state.Phase = domain.PhaseRecovering
	m.state.Attempted = true
	m.state.GuardToken = token
	m.state.LastError = ""
	m.state.StartedAt = now.UnixMilli()
	m.state.FinishedAt = 0
	m.metrics.RecoveryPhase(int(domain.PhaseRecovering))

	attemptCtx, cancel := context.WithCancel(m.base)
	done := make(chan struct{})
	m.cancel = cancel
	m.settled = done
	gen := m.generation

	m.logger.InfoContext(ctx, "secondary recovery scheduled",
		"trigger", trigger,
		"guard_token", token,
		"deferral", m.cfg.Deferral,
	)

	m.wg.Add(1)
	go m.run(attemptCtx, cancel, gen, token, done)
}

func (m *Machine) run(ctx context.Context, cancel context.CancelFunc, gen uint64, token string, done chan struct{}) {
	defer m.wg.Done()
	defer close(done)
	defer cancel()

	if m.cfg.Deferral > 0 {
		timer := time.NewTimer(m.cfg.Deferral)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.metrics.RecoveryOutcome("discarded")
			m.logger.Debug("secondary recovery cancelled before start", "guard_token", token)
			return
		case <-timer.C:
		}
	}

	accessToken, err := m.provider.GetAccessToken(ctx)
	m.finish(gen, token, accessToken, err)
}

func (m *Machine) finish(gen uint64, token, accessToken string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || m.state.GuardToken != token {
		m.metrics.RecoveryOutcome("discarded")
		m.logger.Debug("late recovery result discarded", "guard_token", token)
		return
	}

	m.state.FinishedAt = m.clock.Now().UnixMilli()
	m.cancel = nil

	switch {
	case err != nil:
		m.failLocked(domain.ErrRecoveryFailed.WithCause(err))
	case accessToken == "":
		m.failLocked(domain.ErrRecoveryEmptyToken)
	default:
		m.state.Phase = domain.PhaseSucceeded
		m.metrics.RecoveryPhase(int(domain.PhaseSucceeded))
		m.metrics.RecoveryOutcome("succeeded")
		m.logger.Info("secondary session recovered", "guard_token", token)
	}
}

func (m *Machine) failLocked(err *domain.DomainError) {
	m.state.Phase = domain.PhaseFailed
	m.state.LastError = err.Error()
	m.metrics.RecoveryPhase(int(domain.PhaseFailed))
	m.metrics.RecoveryOutcome("failed")
	m.logger.Warn("secondary session recovery failed",
		"guard_token", m.state.GuardToken,
		"code", err.Code,
		"error", err,
	)
}

// NeedsReconnection reports whether the user should be offered a manual
// reconnect: an attempt was made, it did not succeed, and the provider is
// still not authenticated.
func (m *Machine) NeedsReconnection() bool {
	m.mu.Lock()
	attempted := m.state.Attempted
	succeeded := m.state.Succeeded()
	m.mu.Unlock()

	return attempted && !succeeded && !m.provider.Authenticated()
}

// Succeeded reports whether the last attempt produced a token.
func (m *Machine) Succeeded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Succeeded()
}

// Reset returns the machine to Idle, clearing the attempted flag and
// cancelling any pending attempt. Call it on sign-out or after a
// successful manual reconnection.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = domain.RecoveryState{}
	m.metrics.RecoveryPhase(int(domain.PhaseIdle))
	m.logger.Debug("recovery reset")
}

// Dismiss records that the user hid the reconnect affordance. It only
// suppresses focus retries; it never starts or stops an attempt.
func (m *Machine) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Dismissed = true
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() domain.RecoveryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Settled returns a channel closed once no attempt is in flight.
func (m *Machine) Settled() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != domain.PhaseRecovering || m.settled == nil {
		return closedChan
	}
	return m.settled
}

// Close cancels any pending attempt and waits for it to exit. Results
// arriving after Close are discarded.
func (m *Machine) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.generation++
	m.mu.Unlock()

	m.baseCancel()
	m.wg.Wait()
	return nil
}
