package app

import (
	"context"

	"github.com/yndnr/handoff-go/internal/config"
	"github.com/yndnr/handoff-go/internal/infra/confloader"
	"github.com/yndnr/handoff-go/internal/telemetry/logger"
)

// startReload watches the config file and applies log level changes.
// Other settings need a restart.
func (a *App) startReload() {
	if a.loader == nil || a.loader.FilePath() == "" {
		return
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(a.logger))
	if err != nil {
		a.logger.Warn("config watcher disabled", "error", err)
		return
	}
	if err := w.Watch(a.loader.FilePath()); err != nil {
		w.Stop()
		a.logger.Warn("config watcher disabled", "error", err)
		return
	}
	w.OnChange(a.applyReload)
	w.StartAsync()

	a.shutdown.OnShutdown("config-watcher", func(context.Context) error {
		return w.Stop()
	})
}

func (a *App) applyReload(path string) {
	next := config.Default()
	if err := a.loader.Reload(next); err != nil {
		a.logger.Warn("config reload failed", "path", path, "error", err)
		return
	}
	if err := config.Verify(next); err != nil {
		a.logger.Warn("reloaded config rejected", "path", path, "error", err)
		return
	}

	if prev := logger.GetLevel(); prev != next.Log.Level {
		logger.SetLevel(next.Log.Level)
		a.logger.Info("log level changed", "from", prev, "to", next.Log.Level)
	}
}
