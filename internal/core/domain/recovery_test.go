package domain

import (
	"strings"
	"testing"
	"time"
)

func TestRecoveryPhase_String(t *testing.T) {
	tests := []struct {
		phase RecoveryPhase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseRecovering, "recovering"},
		{PhaseSucceeded, "succeeded"},
		{PhaseFailed, "failed"},
		{RecoveryPhase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRecoveryPhase_IsTerminal(t *testing.T) {
	if PhaseIdle.IsTerminal() || PhaseRecovering.IsTerminal() {
		t.Error("idle and recovering are not terminal")
	}
	if !PhaseSucceeded.IsTerminal() || !PhaseFailed.IsTerminal() {
		t.Error("succeeded and failed are terminal")
	}
}

func TestNewGuardToken_Unique(t *testing.T) {
	now := time.Now()
	a := NewGuardToken(now)
	b := NewGuardToken(now)

	if !strings.HasPrefix(a, GuardTokenPrefix) {
		t.Errorf("token = %q, want prefix %q", a, GuardTokenPrefix)
	}
	if a == b {
		t.Error("NewGuardToken() returned duplicate tokens")
	}
}
