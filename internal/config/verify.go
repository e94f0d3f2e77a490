package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		return invalid("server.addr %q: %v", cfg.Server.Addr, err)
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"handoff.wallet_connect_ttl", cfg.Handoff.WalletConnectTTL},
		{"handoff.payment_ttl", cfg.Handoff.PaymentTTL},
		{"wallet.cache_ttl", cfg.Wallet.CacheTTL},
		{"bridge.timeout", cfg.Bridge.Timeout},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return invalid("%s must be positive", d.name)
		}
	}
	if cfg.Recovery.Deferral < 0 {
		return invalid("recovery.deferral must not be negative")
	}
	if cfg.Recovery.AuthMethod == "" {
		return invalid("recovery.auth_method is required")
	}
	if cfg.Sync.AuthNamespace == "" {
		return invalid("sync.auth_namespace is required")
	}

	for name, raw := range map[string]string{
		"bridge.primary_url":   cfg.Bridge.PrimaryURL,
		"bridge.secondary_url": cfg.Bridge.SecondaryURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("%s %q is not an http(s) URL", name, raw)
		}
	}

	if f := cfg.Bridge.CAFile; f != "" {
		if _, err := os.Stat(f); err != nil {
			return invalid("bridge.ca_file: %v", err)
		}
	}

	switch cfg.Log.Format {
	case "json", "text":
	default:
		return invalid("log.format must be json or text")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.Ephemeral {
		return nil
	}
	if cfg.DataDir == "" {
		return invalid("storage.data_dir is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return invalid("cannot create data directory: %v", err)
	}
	if cfg.GCInterval < time.Minute {
		return invalid("storage.gc_interval must be at least 1m")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf(format, args...))
}
