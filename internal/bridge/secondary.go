package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/yndnr/handoff-go/internal/recovery"
)

// ProviderStatus is the secondary provider's self-report.
type ProviderStatus struct {
	Ready         bool `json:"ready"`
	Authenticated bool `json:"authenticated"`
}

// SecondaryProvider is a recovery.SecondaryProvider backed by an HTTP
// identity provider:
//
//	GET  /status  {"ready", "authenticated"}
//	POST /token   {"access_token"}
//
// Ready and Authenticated report the last fetched status; call Sync to
// refresh it.
type SecondaryProvider struct {
	http   *HTTPClient
	logger *slog.Logger

	mu     sync.RWMutex
	status ProviderStatus
}

// NewSecondaryProvider creates a provider client.
func NewSecondaryProvider(c *HTTPClient, logger *slog.Logger) *SecondaryProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecondaryProvider{http: c, logger: logger.With("component", "secondary_provider")}
}

// Sync fetches the current status. On failure the provider is reported
// as not ready.
func (p *SecondaryProvider) Sync(ctx context.Context) error {
	var st ProviderStatus
	err := p.http.Do(ctx, http.MethodGet, "/status", nil, &st)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.status = ProviderStatus{}
		p.logger.Debug("provider status unavailable", "error", err)
		return err
	}
	p.status = st
	return nil
}

// Ready implements recovery.SecondaryProvider.
func (p *SecondaryProvider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.Ready
}

// Authenticated implements recovery.SecondaryProvider.
func (p *SecondaryProvider) Authenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.Authenticated
}

// GetAccessToken implements recovery.SecondaryProvider.
func (p *SecondaryProvider) GetAccessToken(ctx context.Context) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := p.http.Do(ctx, http.MethodPost, "/token", nil, &resp); err != nil {
		return "", err
	}

	if resp.AccessToken != "" {
		p.mu.Lock()
		p.status = ProviderStatus{Ready: true, Authenticated: true}
		p.mu.Unlock()
	}
	return resp.AccessToken, nil
}

var _ recovery.SecondaryProvider = (*SecondaryProvider)(nil)
