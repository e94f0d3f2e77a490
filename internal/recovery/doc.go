// Package recovery re-establishes a secondary (wallet) identity session
// silently when the primary session is valid but the secondary is not.
//
// The Machine moves Idle -> Recovering -> Succeeded|Failed. A guard token
// owns the Recovering phase so overlapping evaluations start at most one
// attempt. Only Reset returns the machine to Idle; a failed attempt is
// retried solely on a fresh focus event, and never once the reconnect
// affordance has been dismissed.
package recovery
