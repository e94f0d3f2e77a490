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

// DefaultWalletCacheTTL is how long a wallet snapshot stays usable.
const DefaultWalletCacheTTL = 24 * time.Hour

var walletKey = []byte("wallet/session")

// WalletCache stores the last-known wallet snapshot.
//
// The snapshot is a rendering hint. Nothing here hands it to a signing or
// payment path; callers re-validate with WalletSnapshot.Matches.
type WalletCache struct {
	engine storage.KVEngine
	clock  domain.Clock
	logger  *slog.Logger
	metrics *metric.Registry
	ttl     time.Duration
}

// NewWalletCache creates a WalletCache. A zero ttl selects DefaultWalletCacheTTL.
// metrics may be nil.
func NewWalletCache(engine storage.KVEngine, clock domain.Clock, logger *slog.Logger, metrics *metric.Registry, ttl time.Duration) *WalletCache {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultWalletCacheTTL
	}
	return &WalletCache{
		engine:  engine,
		clock:   clock,
		logger:  logger.With("component", "wallet_cache"),
		metrics: metrics,
		ttl:     ttl,
	}
}

// Get returns the snapshot if it is younger than the cache TTL.
// An expired snapshot is deleted.
func (c *WalletCache) Get(ctx context.Context) (*domain.WalletSnapshot, bool) {
	data, err := c.engine.Get(ctx, walletKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			c.fault("get", err)
		}
		return nil, false
	}

	var snap domain.WalletSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.fault("decode", domain.ErrRecordCorrupt.WithCause(err))
		return nil, false
	}

	if snap.Age(c.clock.Now()) > c.ttl {
		if err := c.engine.Delete(ctx, walletKey); err != nil {
			c.fault("delete", err)
		}
		c.logger.Debug("wallet snapshot expired", "address", snap.Address)
		return nil, false
	}
	return &snap, true
}

// Set overwrites the snapshot, stamping CapturedAt with the current time.
// Only validation errors are returned.
func (c *WalletCache) Set(ctx context.Context, snap domain.WalletSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.CapturedAt = c.clock.Now().UnixMilli()

	data, err := json.Marshal(&snap)
	if err != nil {
		return domain.ErrInvalidArgument.WithCause(err)
	}
	if err := c.engine.Set(ctx, walletKey, data); err != nil {
		c.fault("set", err)
		return nil
	}
	c.logger.Debug("wallet snapshot saved", "address", snap.Address, "chain_id", snap.ChainID)
	return nil
}

// Clear removes the snapshot. Called on full sign-out.
func (c *WalletCache) Clear(ctx context.Context) {
	if err := c.engine.Delete(ctx, walletKey); err != nil {
		c.fault("delete", err)
	}
}

func (c *WalletCache) fault(op string, err error) {
	c.metrics.StorageFault(op)
	c.logger.Warn("wallet cache storage fault",
		"op", op,
		"code", domain.ErrStorageUnavailable.Code,
		"error", err,
	)
}
