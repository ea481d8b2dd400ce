// Package watch processes transcript files as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called once per new or rewritten transcript file.
type Handler func(ctx context.Context, path string) error

// Watcher monitors one directory with fsnotify.
type Watcher struct {
	dir        string
	extensions []string
	settle     time.Duration
	handle     Handler

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup // running or scheduled handler calls
	ready   chan struct{}  // closed once the directory is being watched
}

// New creates a watcher for dir calling handle for .md and .txt files.
// Events are coalesced: handle runs once a file has been quiet for settle.
func New(dir string, handle Handler, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &Watcher{
		dir:        dir,
		extensions: []string{".md", ".txt"},
		settle:     settle,
		handle:     handle,
		pending:    make(map[string]*time.Timer),
		ready:      make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	close(w.ready)
	slog.Info("watching for transcripts", slog.String("dir", w.dir), slog.Any("extensions", w.extensions))

	defer func() {
		w.stopPending()
		w.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.watched(ev.Name) || !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			w.schedule(ctx, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", slog.Any("error", err))
		}
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.settle)
		return
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err := w.handle(ctx, path); err != nil {
			slog.Error("transcript processing failed", slog.String("path", path), slog.Any("error", err))
		}
	})
	w.pending[path] = t
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		if t.Stop() {
			delete(w.pending, path)
			w.wg.Done()
		}
	}
}

func (w *Watcher) watched(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(base)))
}
