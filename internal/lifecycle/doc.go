// Package lifecycle delivers host lifecycle signals to the subsystem.
//
// A Source emits Events: the app became visible or hidden, regained
// focus, or another context mutated shared storage. Implementations:
//
//   - Bus: in-memory, fed by the host bridge and by tests
//   - FileWatcher: storage mutations observed in a shared directory
//   - OSSignals: SIGCONT and SIGTSTP mapped to visibility and focus
//
// Merge fans several sources into one.
package lifecycle
