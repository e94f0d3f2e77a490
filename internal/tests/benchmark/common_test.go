package benchmark

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/yndnr/handoff-go/internal/storage"
	"github.com/yndnr/handoff-go/internal/storage/memory"
	"github.com/yndnr/handoff-go/pkg/crypto/adaptive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// engineFactory opens a fresh engine for one benchmark.
type engineFactory struct {
	name string
	open func(b *testing.B) storage.KVEngine
}

func openMemory(b *testing.B) storage.KVEngine {
	return memory.New()
}

func openBadger(b *testing.B) storage.KVEngine {
	b.Helper()
	cfg := storage.DefaultKVConfig(b.TempDir())
	// BenchmarkBadgerSyncWrites covers the fsync cost.
	cfg.SyncWrites = false
	e, err := storage.NewBadgerEngine(cfg, discardLogger())
	if err != nil {
		b.Fatalf("NewBadgerEngine() error = %v", err)
	}
	b.Cleanup(func() { e.Close() })
	return e
}

func openSealed(b *testing.B) storage.KVEngine {
	b.Helper()
	key := make([]byte, 32)
	rand.Read(key)
	c, err := adaptive.New(key)
	if err != nil {
		b.Fatalf("adaptive.New() error = %v", err)
	}
	return storage.NewSealed(memory.New(), c)
}

var engines = []engineFactory{
	{"memory", openMemory},
	{"badger", openBadger},
	{"sealed_memory", openSealed},
}

// runWithEngines runs benchFn against every engine.
func runWithEngines(b *testing.B, benchFn func(b *testing.B, engine storage.KVEngine)) {
	for _, f := range engines {
		b.Run(f.name, func(b *testing.B) {
			benchFn(b, f.open(b))
		})
	}
}

func sizeLabel(size int) string {
	if size >= 1024 {
		return fmt.Sprintf("%dKB", size/1024)
	}
	return fmt.Sprintf("%dB", size)
}
