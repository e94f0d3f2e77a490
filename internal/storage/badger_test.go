package storage

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestBadger(t *testing.T, dir string) *BadgerEngine {
	t.Helper()

	cfg := DefaultKVConfig(dir)
	cfg.GCInterval = "1h" // Disable auto GC for tests

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestBadgerEngine_BasicOperations(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	t.Cleanup(func() { engine.Close() })

	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		key := []byte("marker/wallet-connect")
		value := []byte(`{"kind":"wallet-connect"}`)

		if err := engine.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}

		got, err := engine.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(value) {
			t.Errorf("expected %s, got %s", value, got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := engine.Get(ctx, []byte("non-existent"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := []byte("delete-key")
		if err := engine.Set(ctx, key, []byte("v")); err != nil {
			t.Fatal(err)
		}
		if err := engine.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}
		if _, err := engine.Get(ctx, key); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete missing key", func(t *testing.T) {
		if err := engine.Delete(ctx, []byte("never-written")); err != nil {
			t.Errorf("Delete() of missing key error = %v", err)
		}
	})
}

func TestBadgerEngine_Scan(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	t.Cleanup(func() { engine.Close() })

	ctx := context.Background()
	testData := map[string]string{
		"marker/wallet-connect":   "a",
		"marker/external-payment": "b",
		"wallet/session":          "c",
	}
	for k, v := range testData {
		if err := engine.Set(ctx, []byte(k), []byte(v)); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("Scan with prefix", func(t *testing.T) {
		var keys []string
		err := engine.Scan(ctx, []byte("marker/"), func(key, value []byte) bool {
			keys = append(keys, string(key))
			return true
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 2 {
			t.Errorf("expected 2 results, got %d (%v)", len(keys), keys)
		}
	})

	t.Run("Scan with early stop", func(t *testing.T) {
		count := 0
		err := engine.Scan(ctx, []byte("marker/"), func(key, value []byte) bool {
			count++
			return false
		})
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("expected 1 iteration, got %d", count)
		}
	})
}

func TestBadgerEngine_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	engine := newTestBadger(t, dir)
	if err := engine.Set(ctx, []byte("marker/external-payment"), []byte("pending")); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := newTestBadger(t, dir)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.Get(ctx, []byte("marker/external-payment"))
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != "pending" {
		t.Errorf("Get() after reopen = %q, want %q", got, "pending")
	}
}

func TestBadgerEngine_Closed(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := engine.Get(ctx, []byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after Close error = %v, want ErrClosed", err)
	}
	if err := engine.Set(ctx, []byte("k"), []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
	if err := engine.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine_GCAndMetrics(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	t.Cleanup(func() { engine.Close() })

	registry := prometheus.NewRegistry()
	engine.RegisterMetrics(registry)

	if err := engine.GC(context.Background()); err != nil {
		t.Fatalf("GC() error = %v", err)
	}
	if engine.LastGCTime().IsZero() {
		t.Error("LastGCTime() should be set after GC")
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 3 {
		t.Errorf("gathered %d metric families, want 3", len(families))
	}
}
