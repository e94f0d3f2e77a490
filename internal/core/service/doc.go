// Package service implements the durable pending-operation services.
//
//   - MarkerStore: TTL-bounded markers, one per kind, expired lazily on read
//   - HandoffTracker: a MarkerStore bound to one external flow
//   - WalletCache: the last-known wallet snapshot with a 24h lifetime
//
// Storage faults never reach callers. They are logged at warn level and
// the operation degrades to "absent" (reads) or a no-op (writes).
package service
