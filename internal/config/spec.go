package config

import "time"

// Config is the root configuration for handoffd.
type Config struct {
	Server   ServerSection   `koanf:"server" yaml:"server"`
	Storage  StorageSection  `koanf:"storage" yaml:"storage"`
	Handoff  HandoffSection  `koanf:"handoff" yaml:"handoff"`
	Wallet   WalletSection   `koanf:"wallet" yaml:"wallet"`
	Recovery RecoverySection `koanf:"recovery" yaml:"recovery"`
	Sync     SyncSection     `koanf:"sync" yaml:"sync"`
	Bridge   BridgeSection   `koanf:"bridge" yaml:"bridge"`
	Metrics  MetricsSection  `koanf:"metrics" yaml:"metrics"`
	Log      LogSection      `koanf:"log" yaml:"log"`
}

// ServerSection configures the host bridge HTTP endpoint.
type ServerSection struct {
	Addr string `koanf:"addr" yaml:"addr"`

	// CORSOrigins lists origins allowed to call the bridge from a
	// browser context. Empty allows any origin.
	CORSOrigins []string `koanf:"cors_origins" yaml:"cors_origins"`
}

// StorageSection configures the durable store.
type StorageSection struct {
	DataDir string `koanf:"data_dir" yaml:"data_dir"`

	// Ephemeral keeps all state in memory. Nothing survives a restart.
	Ephemeral bool `koanf:"ephemeral" yaml:"ephemeral"`

	// EncryptionKey seals stored records when set. Any length; the
	// record key is derived from it.
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key"`

	GCInterval time.Duration `koanf:"gc_interval" yaml:"gc_interval"`
}

// HandoffSection configures handoff marker lifetimes.
type HandoffSection struct {
	WalletConnectTTL time.Duration `koanf:"wallet_connect_ttl" yaml:"wallet_connect_ttl"`
	PaymentTTL       time.Duration `koanf:"payment_ttl" yaml:"payment_ttl"`
}

// WalletSection configures the wallet snapshot cache.
type WalletSection struct {
	CacheTTL time.Duration `koanf:"cache_ttl" yaml:"cache_ttl"`
}

// RecoverySection configures secondary identity recovery.
type RecoverySection struct {
	Deferral time.Duration `koanf:"deferral" yaml:"deferral"`

	// AuthMethod is the sign-in method served by the secondary provider.
	AuthMethod string `koanf:"auth_method" yaml:"auth_method"`
}

// SyncSection configures primary session revalidation.
type SyncSection struct {
	AuthNamespace string `koanf:"auth_namespace" yaml:"auth_namespace"`

	// WatchDir is the shared directory other processes write to signal
	// storage mutations. Empty disables the watcher.
	WatchDir string `koanf:"watch_dir" yaml:"watch_dir"`

	// Signals maps SIGCONT/SIGTSTP to lifecycle events.
	Signals bool `koanf:"signals" yaml:"signals"`
}

// BridgeSection locates the primary backend and the secondary identity
// provider. An empty URL disables the component that needs it.
type BridgeSection struct {
	PrimaryURL   string        `koanf:"primary_url" yaml:"primary_url"`
	SecondaryURL string        `koanf:"secondary_url" yaml:"secondary_url"`
	Timeout      time.Duration `koanf:"timeout" yaml:"timeout"`
	// CAFile is an extra PEM bundle trusted for https bridge URLs.
	CAFile string `koanf:"ca_file" yaml:"ca_file"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
