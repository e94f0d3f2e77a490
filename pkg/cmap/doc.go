// Package cmap provides a sharded concurrent map.
//
// Each shard is guarded by its own RWMutex; keys are distributed with
// hash/maphash. Read operations (Get, Has, Range) take read locks and
// write operations (Set, Delete, Pop) take write locks on a single shard.
//
//	m := cmap.New[string, []byte]()
//	m.Set("marker/wallet-connect", raw)
//	val, ok := m.Get("marker/wallet-connect")
package cmap
