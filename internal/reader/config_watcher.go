package reader

import (
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/folio/internal/core/config"
	"github.com/colonyops/folio/internal/core/logging"
)

// ConfigChangedMsg is sent after the config file changed on disk. Err is set
// when the new file could not be loaded; the previous config stays in effect.
type ConfigChangedMsg struct {
	Config *config.Config
	Err    error
}

// ConfigWatcher reloads the config file when it changes and emits
// ConfigChangedMsg via tea.Cmd. The parent directory is watched so editors
// that save by renaming a temp file over the original are seen.
type ConfigWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	dataDir     string
	debounceDur time.Duration
	log         zerolog.Logger
}

// NewConfigWatcher watches configPath. It returns nil when the path is empty,
// its directory does not exist or fsnotify fails.
func NewConfigWatcher(configPath, dataDir string) *ConfigWatcher {
	log := logging.Component("config-watcher")
	if configPath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("failed to create fsnotify watcher")
		return nil
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		log.Debug().Err(err).Str("path", abs).Msg("config directory not watchable")
		_ = watcher.Close()
		return nil
	}

	return &ConfigWatcher{
		watcher:     watcher,
		path:        abs,
		dataDir:     dataDir,
		debounceDur: 150 * time.Millisecond,
		log:         log,
	}
}

// Start returns a tea.Cmd that blocks until the config file changes, then
// returns a ConfigChangedMsg. The caller must re-invoke Start after handling
// the message to keep watching.
func (w *ConfigWatcher) Start() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.relevant(event) {
					continue
				}

				w.log.Debug().
					Str("path", event.Name).
					Str("op", event.Op.String()).
					Msg("config file event")

				if !w.settle() {
					return nil
				}

				cfg, err := config.Load(w.path, w.dataDir)
				if err != nil {
					w.log.Warn().Err(err).Msg("config reload failed")
					return ConfigChangedMsg{Err: err}
				}
				return ConfigChangedMsg{Config: cfg}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				w.log.Error().Err(err).Msg("watcher error")
			}
		}
	}
}

// settle drains events until the file has been quiet for the debounce
// interval. It returns false when the watcher was closed.
func (w *ConfigWatcher) settle() bool {
	debounce := time.NewTimer(w.debounceDur)
	defer debounce.Stop()

	for {
		select {
		case e, ok := <-w.watcher.Events:
			if !ok {
				return false
			}
			if !w.relevant(e) {
				continue
			}
			if !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(w.debounceDur)
		case <-debounce.C:
			return true
		}
	}
}

func (w *ConfigWatcher) relevant(e fsnotify.Event) bool {
	if filepath.Clean(e.Name) != w.path {
		return false
	}
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) || e.Has(fsnotify.Rename)
}

// Close stops the watcher.
func (w *ConfigWatcher) Close() error {
	return w.watcher.Close()
}
