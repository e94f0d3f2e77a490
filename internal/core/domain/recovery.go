package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// RecoveryPhase is the phase of a secondary identity recovery attempt.
type RecoveryPhase int

const (
	PhaseIdle RecoveryPhase = iota
	PhaseRecovering
	PhaseSucceeded
	PhaseFailed
)

// String returns the phase name.
func (p RecoveryPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRecovering:
		return "recovering"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the phase ends an attempt.
func (p RecoveryPhase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// GuardTokenPrefix is the prefix for recovery guard tokens.
const GuardTokenPrefix = "hogt-"

// RecoveryState is a point-in-time view of the recovery machine.
type RecoveryState struct {
	Phase RecoveryPhase `json:"phase"`

	// Attempted is set once an attempt has been launched in this
	// logical session. Only a reset clears it.
	Attempted bool `json:"attempted"`

	// GuardToken identifies the attempt that owns the Recovering phase.
	// Empty when Idle.
	GuardToken string `json:"guard_token,omitempty"`

	// LastError holds the failure reason of the last attempt, if any.
	LastError string `json:"last_error,omitempty"`

	// StartedAt and FinishedAt bound the last attempt (Unix milliseconds).
	StartedAt  int64 `json:"started_at,omitempty"`
	FinishedAt int64 `json:"finished_at,omitempty"`

	// Dismissed is set when the user hid the reconnect affordance.
	Dismissed bool `json:"dismissed"`
}

// Succeeded reports whether the last attempt produced a token.
func (s RecoveryState) Succeeded() bool {
	return s.Phase == PhaseSucceeded
}

// NewGuardToken generates a unique attempt owner token.
func NewGuardToken(now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	return GuardTokenPrefix + strings.ToLower(id.String())
}
