package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yndnr/handoff-go/internal/storage/memory"
	"github.com/yndnr/handoff-go/internal/testutil"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*MarkerStore, *memory.Engine, *testutil.FakeClock) {
	t.Helper()
	engine := memory.New()
	clock := testutil.NewFakeClock(epoch)
	return NewMarkerStore(engine, clock, discardLogger(), nil), engine, clock
}
