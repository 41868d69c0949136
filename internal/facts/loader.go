package facts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultLauncher is the launcher window name when a document sets none.
const DefaultLauncher = "launcher"

// Load reads, decodes and validates one fact file.
func Load(path string) (*App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts %s: %w", path, err)
	}
	app, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("facts %s: %w", path, err)
	}
	app.Source = path
	return app, nil
}

// Parse decodes a fact document, applies defaults and validates it.
func Parse(data []byte) (*App, error) {
	var app App
	if err := yaml.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("parse facts: %w", err)
	}
	applyDefaults(&app)
	if err := Validate(&app); err != nil {
		return nil, err
	}
	return &app, nil
}

func applyDefaults(app *App) {
	if app.Launcher == "" {
		app.Launcher = DefaultLauncher
	}
	for i := range app.Windows {
		w := &app.Windows[i]
		if w.Kind == "dialog" && w.Cancelable == nil {
			yes := true
			w.Cancelable = &yes
		}
	}
}

// Loader holds the fact documents of a set of files and reloads them when
// they change on disk. A file that fails to reload keeps its previous facts.
type Loader struct {
	logger   *slog.Logger
	paths    []string
	mu       sync.RWMutex
	apps     map[string]*App // by path
	onChange []func(*App)
	watcher  *fsnotify.Watcher
}

// NewLoader loads every path. Any invalid file, or two files declaring the
// same app, fails the whole load.
func NewLoader(logger *slog.Logger, paths ...string) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{logger: logger, apps: make(map[string]*App)}
	for _, p := range paths {
		l.paths = append(l.paths, filepath.Clean(p))
	}
	byName := make(map[string]string)
	for _, p := range l.paths {
		app, err := Load(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := byName[app.App]; ok {
			return nil, fmt.Errorf("app %q declared in both %s and %s", app.App, prev, p)
		}
		byName[app.App] = p
		l.apps[p] = app
	}
	return l, nil
}

// Apps returns the current documents ordered by app name.
func (l *Loader) Apps() []*App {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*App, 0, len(l.apps))
	for _, a := range l.apps {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].App < out[j].App })
	return out
}

// App returns the document of the named application.
func (l *Loader) App(name string) (*App, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.apps {
		if a.App == name {
			return a, true
		}
	}
	return nil, false
}

// OnChange registers a callback invoked for every successfully reloaded file.
func (l *Loader) OnChange(fn func(*App)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads files on change.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("facts watcher: %w", err)
	}
	for _, p := range l.paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return nil, fmt.Errorf("facts watcher add %s: %w", p, err)
		}
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.reloadPath(filepath.Clean(ev.Name)); err != nil {
						l.logger.Warn("facts reload failed, keeping previous facts", "path", ev.Name, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("facts watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload re-reads every file. Files that fail keep their previous facts;
// the first failure is returned after all files were tried.
func (l *Loader) Reload() ([]*App, error) {
	var firstErr error
	var reloaded []*App
	for _, p := range l.paths {
		app, err := l.reloadPath(p)
		if err != nil {
			l.logger.Warn("facts reload failed, keeping previous facts", "path", p, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		reloaded = append(reloaded, app)
	}
	return reloaded, firstErr
}

func (l *Loader) reloadPath(path string) (*App, error) {
	app, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	if _, known := l.apps[path]; !known {
		l.mu.Unlock()
		return nil, fmt.Errorf("facts %s: not a loaded file", path)
	}
	for p, other := range l.apps {
		if p != path && other.App == app.App {
			l.mu.Unlock()
			return nil, fmt.Errorf("app %q already declared in %s", app.App, p)
		}
	}
	l.apps[path] = app
	callbacks := make([]func(*App), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()

	l.logger.Info("facts reloaded", "app", app.App, "path", path)
	for _, fn := range callbacks {
		fn(app)
	}
	return app, nil
}
