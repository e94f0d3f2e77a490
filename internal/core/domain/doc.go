// Package domain defines the value types of the pending-operation and
// session-recovery subsystem.
//
// Domain types are pure values without IO dependencies:
//
//   - PendingMarker: a TTL-bounded record that an external handoff is in progress
//   - WalletSnapshot: the last-known wallet identity, a rendering hint only
//   - RecoveryState: the phase of a secondary identity recovery attempt
//   - Clock: the wall-clock source used for every TTL comparison
//   - Errors: coded domain errors
package domain
