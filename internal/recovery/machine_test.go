package recovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
)

// fakeProvider is a SecondaryProvider whose GetAccessToken blocks until
// released when gate is non-nil.
type fakeProvider struct {
	mu            sync.Mutex
	ready         bool
	authenticated bool
	token         string
	err           error
	gate          chan struct{}
	calls         atomic.Int32
}

func (p *fakeProvider) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *fakeProvider) Authenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticated
}

func (p *fakeProvider) GetAccessToken(ctx context.Context) (string, error) {
	p.calls.Add(1)
	p.mu.Lock()
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil && p.token != "" {
		p.authenticated = true
	}
	return p.token, p.err
}

func (p *fakeProvider) set(fn func(p *fakeProvider)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

var validPrimary = PrimaryState{Valid: true}

func newTestMachine(t *testing.T, p *fakeProvider) *Machine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Deferral = time.Millisecond
	m, err := New(p, cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func waitSettled(t *testing.T, m *Machine) {
	t.Helper()
	select {
	case <-m.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("recovery attempt did not settle")
	}
}

func TestMachine_RecoverySucceeds(t *testing.T) {
	p := &fakeProvider{ready: true, token: "tok"}
	m := newTestMachine(t, p)

	if !m.Evaluate(context.Background(), validPrimary, AuthMethodWallet) {
		t.Fatal("Evaluate() = false, want true")
	}
	if got := m.Snapshot().Phase; got != domain.PhaseRecovering {
		t.Errorf("Phase = %v, want recovering", got)
	}
	waitSettled(t, m)

	if !m.Succeeded() {
		t.Error("Succeeded() = false, want true")
	}
	if m.NeedsReconnection() {
		t.Error("NeedsReconnection() = true, want false")
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("GetAccessToken calls = %d, want 1", got)
	}
}

func TestMachine_RejectionNeedsReconnection(t *testing.T) {
	p := &fakeProvider{ready: true, err: errors.New("popup blocked"), gate: make(chan struct{})}
	m := newTestMachine(t, p)
	ctx := context.Background()

	if !m.Evaluate(ctx, validPrimary, AuthMethodWallet) {
		t.Fatal("first Evaluate() = false, want true")
	}
	if m.Evaluate(ctx, validPrimary, AuthMethodWallet) {
		t.Error("concurrent Evaluate() = true, want false")
	}
	if m.OnFocus(ctx, validPrimary, AuthMethodWallet) {
		t.Error("OnFocus() while recovering = true, want false")
	}

	close(p.gate)
	waitSettled(t, m)

	if got := p.calls.Load(); got != 1 {
		t.Errorf("GetAccessToken calls = %d, want 1", got)
	}
	if !m.NeedsReconnection() {
		t.Error("NeedsReconnection() = false, want true")
	}
	s := m.Snapshot()
	if s.Phase != domain.PhaseFailed {
		t.Errorf("Phase = %v, want failed", s.Phase)
	}
	if s.LastError == "" {
		t.Error("LastError should be recorded")
	}

	// A failed attempt does not restart on its own.
	if m.Evaluate(ctx, validPrimary, AuthMethodWallet) {
		t.Error("Evaluate() after failure = true, want false")
	}
}

func TestMachine_ConcurrentEvaluateStartsOneAttempt(t *testing.T) {
	p := &fakeProvider{ready: true, token: "tok", gate: make(chan struct{})}
	m := newTestMachine(t, p)

	var claimed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Evaluate(context.Background(), validPrimary, AuthMethodWallet) {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()
	close(p.gate)
	waitSettled(t, m)

	if got := claimed.Load(); got != 1 {
		t.Errorf("claimed = %d, want 1", got)
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("GetAccessToken calls = %d, want 1", got)
	}
}

func TestMachine_EmptyTokenFails(t *testing.T) {
	p := &fakeProvider{ready: true}
	m := newTestMachine(t, p)

	m.Evaluate(context.Background(), validPrimary, AuthMethodWallet)
	waitSettled(t, m)

	s := m.Snapshot()
	if s.Phase != domain.PhaseFailed {
		t.Errorf("Phase = %v, want failed", s.Phase)
	}
	if !m.NeedsReconnection() {
		t.Error("NeedsReconnection() = false, want true")
	}
}

func TestMachine_EntryConditions(t *testing.T) {
	tests := []struct {
		name    string
		p       *fakeProvider
		primary PrimaryState
		method  AuthMethod
	}{
		{"primary invalid", &fakeProvider{ready: true}, PrimaryState{}, AuthMethodWallet},
		{"non-wallet method", &fakeProvider{ready: true}, validPrimary, AuthMethodEmail},
		{"secondary healthy", &fakeProvider{ready: true, authenticated: true}, validPrimary, AuthMethodWallet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.p)
			if m.Evaluate(context.Background(), tt.primary, tt.method) {
				t.Error("Evaluate() = true, want false")
			}
			if m.Snapshot().Attempted {
				t.Error("Attempted = true, want false")
			}
		})
	}
}

func TestMachine_FocusRetry(t *testing.T) {
	p := &fakeProvider{ready: true, err: errors.New("suspended")}
	m := newTestMachine(t, p)
	ctx := context.Background()

	m.Evaluate(ctx, validPrimary, AuthMethodWallet)
	waitSettled(t, m)

	p.set(func(p *fakeProvider) { p.err = nil; p.token = "tok" })
	if !m.OnFocus(ctx, validPrimary, AuthMethodWallet) {
		t.Fatal("OnFocus() after failure = false, want true")
	}
	waitSettled(t, m)

	if got := p.calls.Load(); got != 2 {
		t.Errorf("GetAccessToken calls = %d, want 2", got)
	}
	if !m.Succeeded() {
		t.Error("Succeeded() = false, want true")
	}
	if m.OnFocus(ctx, validPrimary, AuthMethodWallet) {
		t.Error("OnFocus() after success = true, want false")
	}
}

func TestMachine_DismissSuppressesFocusRetry(t *testing.T) {
	p := &fakeProvider{ready: true, err: errors.New("suspended")}
	m := newTestMachine(t, p)
	ctx := context.Background()

	m.Evaluate(ctx, validPrimary, AuthMethodWallet)
	waitSettled(t, m)
	m.Dismiss()

	if m.OnFocus(ctx, validPrimary, AuthMethodWallet) {
		t.Error("OnFocus() after Dismiss = true, want false")
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("GetAccessToken calls = %d, want 1", got)
	}
	if !m.NeedsReconnection() {
		t.Error("Dismiss should not change NeedsReconnection")
	}
}

func TestMachine_ResetDiscardsLateResult(t *testing.T) {
	p := &fakeProvider{ready: true, token: "tok", gate: make(chan struct{})}
	m := newTestMachine(t, p)
	ctx := context.Background()

	m.Evaluate(ctx, validPrimary, AuthMethodWallet)
	pending := m.Settled()
	m.Reset()

	select {
	case <-pending:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled attempt did not exit")
	}

	s := m.Snapshot()
	if s.Phase != domain.PhaseIdle {
		t.Errorf("Phase = %v, want idle", s.Phase)
	}
	if s.Attempted {
		t.Error("Attempted = true, want false after Reset")
	}

	// After reset the machine may attempt again.
	close(p.gate)
	if !m.Evaluate(ctx, validPrimary, AuthMethodWallet) {
		t.Fatal("Evaluate() after Reset = false, want true")
	}
	waitSettled(t, m)
	if !m.Succeeded() {
		t.Error("Succeeded() = false, want true")
	}
}

func TestMachine_ResetClearsDismissal(t *testing.T) {
	p := &fakeProvider{ready: true}
	m := newTestMachine(t, p)

	m.Dismiss()
	m.Reset()
	if m.Snapshot().Dismissed {
		t.Error("Dismissed = true, want false after Reset")
	}
}

func TestMachine_CloseDiscardsPendingAttempt(t *testing.T) {
	p := &fakeProvider{ready: true, token: "tok", gate: make(chan struct{})}
	m := newTestMachine(t, p)

	m.Evaluate(context.Background(), validPrimary, AuthMethodWallet)
	m.Close()

	if m.Succeeded() {
		t.Error("Succeeded() = true after Close, want false")
	}
	if m.Evaluate(context.Background(), validPrimary, AuthMethodWallet) {
		t.Error("Evaluate() after Close = true, want false")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, DefaultConfig(), nil, nil, nil); err == nil {
		t.Error("New(nil provider) error = nil, want error")
	}
	cfg := DefaultConfig()
	cfg.Deferral = -time.Second
	if _, err := New(&fakeProvider{}, cfg, nil, nil, nil); err == nil {
		t.Error("New(negative deferral) error = nil, want error")
	}
}
