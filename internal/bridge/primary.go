package bridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/yndnr/handoff-go/internal/authsync"
)

// PrimaryClient is an authsync.PrimaryClient backed by the primary
// backend's HTTP API:
//
//	GET  /session          200 {"user_id", "expires_at"} or 404
//	POST /session/refresh  2xx on success
type PrimaryClient struct {
	http *HTTPClient
}

// NewPrimaryClient wraps c, which must point at the backend.
func NewPrimaryClient(c *HTTPClient) *PrimaryClient {
	return &PrimaryClient{http: c}
}

// GetSession implements authsync.PrimaryClient. A 404 or 401 means no
// live session and is not an error.
func (p *PrimaryClient) GetSession(ctx context.Context) (*authsync.PrimarySession, error) {
	var s authsync.PrimarySession
	err := p.http.Do(ctx, http.MethodGet, "/session", nil, &s)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// RefreshSession implements authsync.PrimaryClient.
func (p *PrimaryClient) RefreshSession(ctx context.Context) error {
	return p.http.Do(ctx, http.MethodPost, "/session/refresh", nil, nil)
}

var _ authsync.PrimaryClient = (*PrimaryClient)(nil)
