package config

import "time"

// Default configuration values.
const (
	DefaultAddr    = "127.0.0.1:7380"
	DefaultDataDir = "./data"

	DefaultGCInterval = 10 * time.Minute

	DefaultWalletConnectTTL = 5 * time.Minute
	DefaultPaymentTTL       = 30 * time.Minute
	DefaultWalletCacheTTL   = 24 * time.Hour

	DefaultRecoveryDeferral = 300 * time.Millisecond
	DefaultAuthMethod       = "wallet"

	DefaultAuthNamespace = "auth/"
	DefaultBridgeTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerSection{
			Addr: DefaultAddr,
		},
		Storage: StorageSection{
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
		},
		Handoff: HandoffSection{
			WalletConnectTTL: DefaultWalletConnectTTL,
			PaymentTTL:       DefaultPaymentTTL,
		},
		Wallet: WalletSection{
			CacheTTL: DefaultWalletCacheTTL,
		},
		Recovery: RecoverySection{
			Deferral:   DefaultRecoveryDeferral,
			AuthMethod: DefaultAuthMethod,
		},
		Sync: SyncSection{
			AuthNamespace: DefaultAuthNamespace,
			Signals:       true,
		},
		Bridge: BridgeSection{
			Timeout: DefaultBridgeTimeout,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
