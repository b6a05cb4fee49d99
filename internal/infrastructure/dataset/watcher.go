package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a Store when the dataset files change on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	logger  *zap.Logger
	files   map[string]bool

	debounceDelay time.Duration
	mutex         sync.Mutex
	timer         *time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher watches the dataset directory and the template file, if any.
func NewWatcher(store *Store, opts Options, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if opts.Dir == "" && opts.TemplatesPath == "" {
		return nil, fmt.Errorf("nothing to watch: dataset uses embedded data")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	w := &Watcher{
		watcher:       fw,
		store:         store,
		logger:        logger.Named("dataset-watcher"),
		files:         map[string]bool{},
		debounceDelay: debounce,
	}

	dirs := map[string]bool{}
	if opts.Dir != "" {
		for _, name := range []string{CustomersFile, IngredientsFile, MatchesFile} {
			w.files[filepath.Clean(filepath.Join(opts.Dir, name))] = true
		}
		dirs[filepath.Clean(opts.Dir)] = true
	}
	if opts.TemplatesPath != "" {
		w.files[filepath.Clean(opts.TemplatesPath)] = true
		dirs[filepath.Dir(filepath.Clean(opts.TemplatesPath))] = true
	}

	// Directories, not files: editors replace files by rename.
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Info("Watching directory", zap.String("dir", dir))
	}
	return w, nil
}

// Start begins the event loop.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.watchLoop(ctx)
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	w.mutex.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mutex.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if !w.files[name] || strings.HasSuffix(name, "~") {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	// Debounce bursts into a single reload
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, func() {
		w.logger.Info("Dataset file changed, reloading",
			zap.String("file", name),
			zap.String("op", event.Op.String()),
		)
		if err := w.store.Reload(); err != nil {
			w.logger.Warn("Reload rejected", zap.Error(err))
		}
	})
}
