// Package storage provides the durable key/value stores behind pending
// markers and the wallet snapshot.
//
// Engines:
//
//   - BadgerEngine: the persistent, origin-scoped store; survives process death
//   - memory.Engine: the session-only store, also used as the test fake
//   - Sealed: a decorator encrypting values at rest
//
// All engines implement KVEngine. Callers in the core never propagate engine
// errors; they degrade to "absent" (see service.MarkerStore).
package storage
