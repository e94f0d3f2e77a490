package lifecycle

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// DefaultMinInterval is the minimum spacing between two events for the
// same key. A single save often produces several fs notifications.
const DefaultMinInterval = 100 * time.Millisecond

// FileWatcher turns writes in a shared directory into storage mutation
// events. Other processes signal a change to key "auth/session" by
// writing <dir>/auth/session.
type FileWatcher struct {
	root     string
	watcher  *fsnotify.Watcher
	out      chan Event
	done     chan struct{}
	logger   *slog.Logger
	interval time.Duration

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// FileWatcherOption configures a FileWatcher.
type FileWatcherOption func(*FileWatcher)

// WithFileWatcherLogger sets the logger.
func WithFileWatcherLogger(logger *slog.Logger) FileWatcherOption {
	return func(w *FileWatcher) {
		w.logger = logger
	}
}

// WithMinInterval sets the per-key event spacing.
func WithMinInterval(d time.Duration) FileWatcherOption {
	return func(w *FileWatcher) {
		w.interval = d
	}
}

// NewFileWatcher watches root and its subdirectories. The directory is
// created if missing.
func NewFileWatcher(root string, opts ...FileWatcherOption) (*FileWatcher, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FileWatcher{
		root:     filepath.Clean(root),
		watcher:  fw,
		out:      make(chan Event, DefaultBusBuffer),
		done:     make(chan struct{}),
		logger:   slog.Default(),
		interval: DefaultMinInterval,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(w.root); err != nil {
		fw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// addTree adds dir and every directory below it.
func (w *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Error("failed to watch directory", "path", path, "error", err)
			return err
		}
		return nil
	})
}

func (w *FileWatcher) loop() {
	defer w.wg.Done()
	defer close(w.out)

	w.logger.Info("storage watcher started", "dir", w.root)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("storage watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *FileWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	key, ok := w.keyFor(event.Name)
	if !ok {
		return
	}
	if !w.allow(key) {
		w.logger.Debug("storage event coalesced", "key", key, "op", event.Op.String())
		return
	}

	w.logger.Debug("storage mutation observed", "key", key, "op", event.Op.String())
	select {
	case w.out <- Event{Kind: KindStorageMutation, Key: key}:
	case <-w.done:
	}
}

// keyFor maps a file path under root to a storage key. Hidden and
// temporary files are ignored.
func (w *FileWatcher) keyFor(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".tmp") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *FileWatcher) allow(key string) bool {
	if w.interval <= 0 {
		return true
	}
	w.limitersMu.Lock()
	defer w.limitersMu.Unlock()

	l, ok := w.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(w.interval), 1)
		w.limiters[key] = l
	}
	return l.Allow()
}

// Events implements Source. The channel is closed after Close.
func (w *FileWatcher) Events() <-chan Event {
	return w.out
}

// Close stops watching.
func (w *FileWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		w.logger.Info("storage watcher stopped", "dir", w.root)
	})
	return err
}
