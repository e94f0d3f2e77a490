package authsync

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Dedup wraps a PrimaryClient so concurrent calls share one in-flight
// request instead of issuing duplicates.
type Dedup struct {
	inner PrimaryClient
	group singleflight.Group
}

// NewDedup wraps inner.
func NewDedup(inner PrimaryClient) *Dedup {
	return &Dedup{inner: inner}
}

// GetSession implements PrimaryClient.
func (d *Dedup) GetSession(ctx context.Context) (*PrimarySession, error) {
	v, err, _ := d.group.Do("get", func() (any, error) {
		return d.inner.GetSession(ctx)
	})
	if err != nil {
		return nil, err
	}
	session, _ := v.(*PrimarySession)
	return session, nil
}

// RefreshSession implements PrimaryClient.
func (d *Dedup) RefreshSession(ctx context.Context) error {
	_, err, _ := d.group.Do("refresh", func() (any, error) {
		return nil, d.inner.RefreshSession(ctx)
	})
	return err
}

var _ PrimaryClient = (*Dedup)(nil)
