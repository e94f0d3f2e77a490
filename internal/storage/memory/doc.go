// Package memory provides an in-memory KVEngine.
//
// It backs the session-only store (data that must not outlive the
// process) and serves as the storage fake in tests. Fault injection via
// SetFault simulates a disabled or full platform store.
package memory
