package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/yndnr/handoff-go/internal/storage"
	"github.com/yndnr/handoff-go/pkg/cmap"
)

// Engine is an in-memory storage.KVEngine.
type Engine struct {
	items  *cmap.Map[string, []byte]
	closed atomic.Bool

	faultMu sync.RWMutex
	fault   error

	// Op counters, read by tests asserting side-effect freedom.
	gets    atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{items: cmap.New[string, []byte]()}
}

// SetFault makes every subsequent operation fail with err.
// Pass nil to clear the fault.
func (e *Engine) SetFault(err error) {
	e.faultMu.Lock()
	defer e.faultMu.Unlock()
	e.fault = err
}

func (e *Engine) check() error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	e.faultMu.RLock()
	defer e.faultMu.RUnlock()
	return e.fault
}

// Get retrieves a copy of the value stored under key.
func (e *Engine) Get(_ context.Context, key []byte) ([]byte, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.gets.Add(1)

	v, ok := e.items.Get(string(key))
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

// Set stores a copy of value under key.
func (e *Engine) Set(_ context.Context, key, value []byte) error {
	if err := e.check(); err != nil {
		return err
	}
	e.sets.Add(1)
	e.items.Set(string(key), bytes.Clone(value))
	return nil
}

// Delete removes key.
func (e *Engine) Delete(_ context.Context, key []byte) error {
	if err := e.check(); err != nil {
		return err
	}
	e.deletes.Add(1)
	e.items.Delete(string(key))
	return nil
}

// Scan visits keys with prefix in lexical order, matching Badger.
func (e *Engine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if err := e.check(); err != nil {
		return err
	}

	type kv struct {
		key   string
		value []byte
	}
	var matched []kv
	p := string(prefix)
	e.items.Range(func(k string, v []byte) bool {
		if len(k) >= len(p) && k[:len(p)] == p {
			matched = append(matched, kv{k, bytes.Clone(v)})
		}
		return true
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].key < matched[j].key })

	for _, m := range matched {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn([]byte(m.key), m.value) {
			break
		}
	}
	return nil
}

// Close marks the engine closed and drops its contents.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return storage.ErrClosed
	}
	e.items.Clear()
	return nil
}

// Len returns the number of stored keys.
func (e *Engine) Len() int {
	return e.items.Count()
}

// Stats returns the number of Get, Set and Delete calls that reached the map.
func (e *Engine) Stats() (gets, sets, deletes int64) {
	return e.gets.Load(), e.sets.Load(), e.deletes.Load()
}

var _ storage.KVEngine = (*Engine)(nil)
