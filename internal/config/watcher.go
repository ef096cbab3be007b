package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigChangeCallback is invoked with the freshly reloaded AppConfig
// whenever the watched file changes. Errors reloading are swallowed by
// the watcher (logged by the caller via the returned error channel) —
// the previous config stays in effect.
type ConfigChangeCallback func(*AppConfig)

// Watcher hot-reloads the ambient AppConfig/LogConfig when the backing
// YAML file changes on disk. Per spec §3/§4.6, ScanConfig itself is
// immutable once a scan starts — this watcher never touches it.
type Watcher struct {
	loader     *Loader
	fsWatcher  *fsnotify.Watcher
	onChange   ConfigChangeCallback
	reloadDelay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	errCh   chan error
	closeCh chan struct{}
}

// NewWatcher wraps loader's config file with an fsnotify watch. reloadDelay
// debounces rapid-fire write events (many editors emit several in a row
// for a single save).
func NewWatcher(loader *Loader, onChange ConfigChangeCallback, reloadDelay time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	configFile := loader.Viper().ConfigFileUsed()
	if configFile != "" {
		if err := fw.Add(configFile); err != nil {
			fw.Close()
			return nil, err
		}
	}

	if reloadDelay <= 0 {
		reloadDelay = 200 * time.Millisecond
	}

	w := &Watcher{
		loader:      loader,
		fsWatcher:   fw,
		onChange:    onChange,
		reloadDelay: reloadDelay,
		errCh:       make(chan error, 8),
		closeCh:     make(chan struct{}),
	}

	go w.run()

	return w, nil
}

// Errors surfaces reload failures for the caller to log.
func (w *Watcher) Errors() <-chan error {
	return w.errCh
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.scheduleReload()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errCh <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.reloadDelay, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		select {
		case w.errCh <- err:
		default:
		}
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.closeCh)
	return w.fsWatcher.Close()
}
