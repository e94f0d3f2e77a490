package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/storage"
	"github.com/yndnr/handoff-go/internal/telemetry/metric"
)

// MarkerKeyPrefix is the storage namespace for pending markers.
const MarkerKeyPrefix = "marker/"

// MarkerStore persists pending markers in a KVEngine.
//
// Expiry is lazy: there is no sweeper, a marker found past its TTL is
// deleted by the read that observes it.
type MarkerStore struct {
	engine  storage.KVEngine
	clock   domain.Clock
	logger  *slog.Logger
	metrics *metric.Registry
}

// NewMarkerStore creates a MarkerStore. clock, logger and metrics may be nil.
func NewMarkerStore(engine storage.KVEngine, clock domain.Clock, logger *slog.Logger, metrics *metric.Registry) *MarkerStore {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkerStore{
		engine:  engine,
		clock:   clock,
		logger:  logger.With("component", "marker_store"),
		metrics: metrics,
	}
}

func markerKey(kind string) []byte {
	return []byte(MarkerKeyPrefix + kind)
}

// Mark records a pending operation of kind, overwriting any previous marker.
//
// Only argument errors are returned. A storage fault is logged and the
// write is dropped.
func (s *MarkerStore) Mark(ctx context.Context, kind string, payload map[string]any, ttl time.Duration) error {
	m, err := domain.NewPendingMarker(kind, payload, ttl, s.clock.Now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails("payload is not serializable").WithCause(err)
	}

	if err := s.engine.Set(ctx, markerKey(kind), data); err != nil {
		s.fault("set", kind, err)
		return nil
	}

	s.metrics.MarkerOp(kind, "mark", "ok")
	s.logger.Debug("marker set", "kind", kind, "marker_id", m.ID, "ttl", ttl)
	return nil
}

// Read returns the payload of the live marker of kind.
func (s *MarkerStore) Read(ctx context.Context, kind string) (map[string]any, bool) {
	m, ok := s.Peek(ctx, kind)
	if !ok {
		return nil, false
	}
	return m.Payload, true
}

// Peek returns the full live marker of kind, applying the same lazy
// expiry as Read.
func (s *MarkerStore) Peek(ctx context.Context, kind string) (*domain.PendingMarker, bool) {
	data, err := s.engine.Get(ctx, markerKey(kind))
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.fault("get", kind, err)
			return nil, false
		}
		s.metrics.MarkerOp(kind, "read", "miss")
		return nil, false
	}

	var m domain.PendingMarker
	if err := json.Unmarshal(data, &m); err != nil {
		s.fault("decode", kind, domain.ErrRecordCorrupt.WithCause(err))
		return nil, false
	}

	if m.IsExpiredAt(s.clock.Now()) {
		if err := s.engine.Delete(ctx, markerKey(kind)); err != nil {
			s.fault("delete", kind, err)
		}
		s.metrics.MarkerOp(kind, "read", "expired")
		s.logger.Debug("marker expired", "kind", kind, "marker_id", m.ID,
			"code", domain.ErrMarkerExpired.Code)
		return nil, false
	}

	s.metrics.MarkerOp(kind, "read", "hit")
	return &m, true
}

// Clear removes the marker of kind. Clearing a missing marker is a no-op.
func (s *MarkerStore) Clear(ctx context.Context, kind string) {
	if err := s.engine.Delete(ctx, markerKey(kind)); err != nil {
		s.fault("delete", kind, err)
		return
	}
	s.metrics.MarkerOp(kind, "clear", "ok")
	s.logger.Debug("marker cleared", "kind", kind)
}

// List returns every live marker. Expired markers found during the scan
// are deleted.
func (s *MarkerStore) List(ctx context.Context) []*domain.PendingMarker {
	now := s.clock.Now()
	var live []*domain.PendingMarker
	var expired []*domain.PendingMarker
	var expiredKeys [][]byte

	err := s.engine.Scan(ctx, []byte(MarkerKeyPrefix), func(key, value []byte) bool {
		var m domain.PendingMarker
		if err := json.Unmarshal(value, &m); err != nil {
			s.logger.Warn("skipping corrupt marker", "key", string(key), "error", err)
			return true
		}
		if m.IsExpiredAt(now) {
			expired = append(expired, &m)
			expiredKeys = append(expiredKeys, append([]byte(nil), key...))
			return true
		}
		live = append(live, &m)
		return true
	})
	if err != nil {
		s.fault("scan", "", err)
		return nil
	}

	for i, m := range expired {
		if err := s.engine.Delete(ctx, expiredKeys[i]); err != nil {
			s.fault("delete", m.Kind, err)
		}
		s.metrics.MarkerOp(m.Kind, "read", "expired")
	}
	return live
}

func (s *MarkerStore) fault(op, kind string, err error) {
	s.metrics.StorageFault(op)
	if kind != "" {
		s.metrics.MarkerOp(kind, op, "error")
	}
	s.logger.Warn("marker storage fault",
		"op", op,
		"kind", kind,
		"code", domain.ErrStorageUnavailable.Code,
		"error", err,
	)
}
