package daemon

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// liveConfig is the mutable snapshot of reloadable settings that the mixing
// loop consults on every iteration.
type liveConfig struct {
	mu           sync.Mutex
	seedInterval time.Duration
	forceReseed  bool
}

func newLiveConfig(cfg Config) *liveConfig {
	return &liveConfig{
		seedInterval: cfg.SeedInterval,
		forceReseed:  cfg.ForceReseed,
	}
}

func (l *liveConfig) get() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seedInterval, l.forceReseed
}

func (l *liveConfig) set(interval time.Duration, reseed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seedInterval = interval
	l.forceReseed = reseed
}

// ConfigWatcher monitors the daemon's config file via fsnotify and applies
// the reloadable subset (seed interval, force-reseed) without a restart.
// Settings that change the process shape (oneshot, source count) are only
// read at startup.
type ConfigWatcher struct {
	path string
	live *liveConfig

	mu       sync.Mutex
	debounce *time.Timer
}

func NewConfigWatcher(path string, live *liveConfig) *ConfigWatcher {
	return &ConfigWatcher{path: path, live: live}
}

// Run watches the config file's directory until ctx is cancelled. Watching
// the directory instead of the file survives editors that replace the file
// on save.
func (w *ConfigWatcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn().Err(err).Msg("config watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		logger.Warn().Err(err).Str("path", w.path).Msg("config watcher: failed to watch")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("config watcher: error")
		}
	}
}

func (w *ConfigWatcher) debounceReload(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(delay, w.reload)
}

// reload re-reads the config file and applies the reloadable settings. A
// broken file leaves the current settings in place.
func (w *ConfigWatcher) reload() {
	fc, err := loadFileConfig(w.path)
	if err != nil {
		logger.Warn().Err(err).Str("path", w.path).Msg("config watcher: reload failed")
		return
	}

	interval, reseed := w.live.get()
	if fc.SeedInterval != "" {
		d, err := time.ParseDuration(fc.SeedInterval)
		if err != nil {
			logger.Warn().Err(err).Msg("config watcher: invalid seed_interval ignored")
		} else if d > 0 {
			interval = d
		}
	}
	if fc.ForceReseed != nil {
		reseed = *fc.ForceReseed
	}

	w.live.set(interval, reseed)
	logger.Info().Dur("seed_interval", interval).Bool("force_reseed", reseed).
		Msg("configuration reloaded")
}
