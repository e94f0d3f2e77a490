package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/handoff-go/internal/authsync"
	"github.com/yndnr/handoff-go/internal/bridge"
	"github.com/yndnr/handoff-go/internal/config"
	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/core/service"
	"github.com/yndnr/handoff-go/internal/infra/confloader"
	"github.com/yndnr/handoff-go/internal/infra/shutdown"
	"github.com/yndnr/handoff-go/internal/infra/tlsroots"
	"github.com/yndnr/handoff-go/internal/lifecycle"
	"github.com/yndnr/handoff-go/internal/recovery"
	"github.com/yndnr/handoff-go/internal/server/httpserver"
	"github.com/yndnr/handoff-go/internal/server/httpserver/handler"
	"github.com/yndnr/handoff-go/internal/storage"
	"github.com/yndnr/handoff-go/internal/storage/memory"
	"github.com/yndnr/handoff-go/internal/telemetry/metric"
	"github.com/yndnr/handoff-go/pkg/crypto/adaptive"
)

// ShutdownTimeout bounds the shutdown hooks.
const ShutdownTimeout = 15 * time.Second

// sealInfo is the HKDF info string for the record key.
var sealInfo = []byte("handoff/records/v1")

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithConfigLoader enables live reload of the loader's config file.
func WithConfigLoader(l *confloader.Loader) Option {
	return func(a *App) { a.loader = l }
}

// WithClock sets the clock used for marker and wallet TTLs.
func WithClock(c domain.Clock) Option {
	return func(a *App) { a.clock = c }
}

// App is a running handoffd instance.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	loader *confloader.Loader
	clock  domain.Clock

	gatherer prometheus.Gatherer
	metrics  *metric.Registry

	engine   storage.KVEngine
	markers  *service.MarkerStore
	connect  *service.HandoffTracker
	payment  *service.PaymentTracker
	wallet   *service.WalletCache
	session  *authsync.MemoryState
	provider *bridge.SecondaryProvider
	machine  *recovery.Machine
	syncer   *authsync.Syncer
	bus      *lifecycle.Bus
	extra    []lifecycle.Source

	server   *httpserver.Server
	shutdown *shutdown.Handler

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New builds every component from cfg. cfg must have passed
// config.Verify. Nothing is started until Start.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.clock == nil {
		a.clock = domain.SystemClock{}
	}
	a.shutdown = shutdown.NewHandler(ShutdownTimeout, a.logger)

	if cfg.Metrics.Enabled {
		reg := metric.NewProcessRegistry()
		a.gatherer = reg
		a.metrics = metric.NewRegistry(reg)
	}

	if err := a.initStorage(); err != nil {
		return nil, err
	}
	if err := a.initServices(); err != nil {
		a.engine.Close()
		return nil, err
	}
	a.initSources()
	a.initServer()
	return a, nil
}

func (a *App) initStorage() error {
	var engine storage.KVEngine
	if a.cfg.Storage.Ephemeral {
		engine = memory.New()
		a.logger.Warn("ephemeral storage selected, markers will not survive a restart")
	} else {
		kvCfg := storage.DefaultKVConfig(a.cfg.Storage.DataDir)
		kvCfg.GCInterval = a.cfg.Storage.GCInterval.String()
		be, err := storage.NewBadgerEngine(kvCfg, a.logger)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		if reg, ok := a.gatherer.(prometheus.Registerer); ok {
			be.RegisterMetrics(reg)
		}
		engine = be
	}

	if a.cfg.Storage.EncryptionKey != "" {
		key, err := adaptive.DeriveKey([]byte(a.cfg.Storage.EncryptionKey), sealInfo)
		if err != nil {
			engine.Close()
			return fmt.Errorf("derive record key: %w", err)
		}
		c, err := adaptive.New(key)
		if err != nil {
			engine.Close()
			return fmt.Errorf("init record cipher: %w", err)
		}
		engine = storage.NewSealed(engine, c)
		a.logger.Info("record encryption enabled", "cipher", string(c.Type()))
	}

	a.engine = engine
	return nil
}

func (a *App) initServices() error {
	a.markers = service.NewMarkerStore(a.engine, a.clock, a.logger, a.metrics)
	a.connect = service.WalletConnectHandoff(a.markers, a.cfg.Handoff.WalletConnectTTL)
	a.payment = service.PaymentHandoff(a.markers, a.cfg.Handoff.PaymentTTL)
	a.wallet = service.NewWalletCache(a.engine, a.clock, a.logger, a.metrics, a.cfg.Wallet.CacheTTL)
	a.session = authsync.NewMemoryState()

	tlsCfg, err := tlsroots.ClientConfig(a.cfg.Bridge.CAFile)
	if err != nil {
		return fmt.Errorf("load bridge CA: %w", err)
	}
	tlsOpt := bridge.WithTLSConfig(tlsCfg)

	var focus authsync.FocusHandler
	if url := a.cfg.Bridge.SecondaryURL; url != "" {
		a.provider = bridge.NewSecondaryProvider(bridge.NewHTTPClient(url, a.cfg.Bridge.Timeout, tlsOpt), a.logger)
		m, err := recovery.New(a.provider, recovery.Config{
			Deferral:        a.cfg.Recovery.Deferral,
			SecondaryMethod: recovery.AuthMethod(a.cfg.Recovery.AuthMethod),
		}, a.clock, a.logger, a.metrics)
		if err != nil {
			return fmt.Errorf("init recovery: %w", err)
		}
		a.machine = m
		focus = &syncedFocus{provider: a.provider, machine: m, logger: a.logger}
	} else {
		a.logger.Info("bridge.secondary_url not set, secondary recovery disabled")
	}

	var primary authsync.PrimaryClient = localPrimary{state: a.session}
	if url := a.cfg.Bridge.PrimaryURL; url != "" {
		primary = authsync.NewDedup(bridge.NewPrimaryClient(bridge.NewHTTPClient(url, a.cfg.Bridge.Timeout, tlsOpt)))
	} else {
		a.logger.Info("bridge.primary_url not set, local sign-in state is authoritative")
	}

	s, err := authsync.New(primary, a.session, focus, authsync.Config{
		AuthNamespace: a.cfg.Sync.AuthNamespace,
	}, a.logger, a.metrics)
	if err != nil {
		return fmt.Errorf("init auth sync: %w", err)
	}
	a.syncer = s
	return nil
}

// initSources opens the optional lifecycle sources. A source that cannot
// be opened is logged and skipped; the HTTP bus always works.
func (a *App) initSources() {
	a.bus = lifecycle.NewBus()

	if dir := a.cfg.Sync.WatchDir; dir != "" {
		fw, err := lifecycle.NewFileWatcher(dir, lifecycle.WithFileWatcherLogger(a.logger))
		if err != nil {
			a.logger.Warn("storage watcher disabled", "dir", dir, "error", err)
		} else {
			a.extra = append(a.extra, fw)
		}
	}
	if a.cfg.Sync.Signals {
		sig, err := lifecycle.NewOSSignals(a.logger)
		if err != nil {
			a.logger.Warn("signal lifecycle source disabled", "error", err)
		} else {
			a.extra = append(a.extra, sig)
		}
	}
}

func (a *App) initServer() {
	deps := handler.Deps{
		Markers:  a.markers,
		Trackers: []*service.HandoffTracker{a.connect, a.payment.HandoffTracker},
		Wallet:   a.wallet,
		Events:   a.bus,
		Session:  a.session,
	}
	if a.machine != nil {
		deps.Recovery = a.machine
		deps.Provider = a.provider
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Deps:        deps,
		Gatherer:    a.gatherer,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Logger:      a.logger,
	})
	a.server = httpserver.New(a.cfg.Server.Addr, router)
}

// Start opens the listener and starts the background loops.
func (a *App) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Server.Addr, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()

	a.shutdown.OnShutdown("storage", func(context.Context) error {
		return a.engine.Close()
	})
	if a.machine != nil {
		a.shutdown.OnShutdown("recovery", func(context.Context) error {
			return a.machine.Close()
		})
	}

	sources := append([]lifecycle.Source{a.bus}, a.extra...)
	merged := lifecycle.Merge(runCtx, sources...)
	a.shutdown.OnShutdown("lifecycle", func(context.Context) error {
		cancel()
		err := merged.Close()
		a.wg.Wait()
		return err
	})

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.syncer.Run(runCtx, merged); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("auth sync stopped", "error", err)
		}
	}()

	a.startReload()

	a.shutdown.OnShutdown("http", func(ctx context.Context) error {
		return a.server.Shutdown(ctx)
	})
	go func() {
		a.logger.Info("host bridge listening", "addr", l.Addr().String())
		if err := a.server.Serve(l); err != nil {
			a.logger.Error("http server error", "error", err)
			a.shutdown.Trigger()
		}
	}()

	a.bootstrap(ctx)
	return nil
}

// bootstrap reports a handoff left pending by a previous run. The host
// reads it on its next foregrounding; it is never assumed successful.
func (a *App) bootstrap(ctx context.Context) {
	winner, m, ok := service.ResolveHandoff(ctx, a.connect, a.payment.HandoffTracker)
	if !ok {
		return
	}
	a.logger.Info("pending handoff found",
		"kind", winner.Kind(),
		"marker_id", m.ID,
		"age", a.clock.Now().Sub(m.CreatedAtTime()).Round(time.Second).String(),
	)
}

// Wait blocks until shutdown completes. Shutdown starts on SIGINT,
// SIGTERM, Stop or ctx cancellation.
func (a *App) Wait(ctx context.Context) error {
	return a.shutdown.Wait(ctx)
}

// Run starts the app and blocks until shutdown completes.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		a.engine.Close()
		return err
	}
	return a.Wait(ctx)
}

// Stop triggers shutdown.
func (a *App) Stop() {
	a.shutdown.Trigger()
}

// Addr returns the bound listener address, or "" before Start.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}
