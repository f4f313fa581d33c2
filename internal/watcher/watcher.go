// Package watcher reports packages installed or forgotten while pkgman runs.
//
// The installer writes a .plist and a .bom file into the receipts directory
// (/var/db/receipts) for every package. The Watcher follows that directory
// with fsnotify, waits for a quiet period after a burst of events, then
// refreshes the package catalog and emits the ids that appeared or vanished.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mordilloSan/go_logger/logger"
)

// DefaultDebounce is the quiet period after the last receipt event before
// the catalog is refreshed.
const DefaultDebounce = 500 * time.Millisecond

// Lister is the part of the package catalog the Watcher drives.
type Lister interface {
	Refresh(ctx context.Context) error
	ListAll() []string
}

// Change lists package ids added and removed since the previous refresh.
type Change struct {
	Added   []string `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// Empty reports whether the change carries no ids.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Watcher follows a receipts directory and emits catalog changes.
type Watcher struct {
	Dir     string
	Changes <-chan Change

	catalog  Lister
	debounce time.Duration
	fsw      *fsnotify.Watcher
	changes  chan Change
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	known    []string
}

// New creates a Watcher for dir. Nothing is watched until Start.
func New(dir string, catalog Lister) (*Watcher, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Dir:      dir,
		Changes:  ch,
		catalog:  catalog,
		debounce: DefaultDebounce,
		fsw:      fsw,
		changes:  ch,
		stopCh:   make(chan struct{}),
	}, nil
}

// WithDebounce overrides the quiet period. It must be called before Start.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Start takes the baseline catalog snapshot and begins watching. A failed
// baseline refresh is returned and nothing is started.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load baseline catalog: %w", err)
	}
	w.known = w.catalog.ListAll()

	if err := w.fsw.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}
	logger.Infof("watching %s (%d packages)", w.Dir, len(w.known))

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop halts watching and closes Changes. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fsw.Close()
		w.wg.Wait()
		close(w.changes)
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var pending time.Time
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isReceiptFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
				logger.Debugf("receipt event %s", event)
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			w.refresh(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warnf("receipt watch error: %v", err)

		case <-ctx.Done():
			return

		case <-w.stopCh:
			return
		}
	}
}

// refresh reloads the catalog and emits the difference from the last
// successful snapshot. A failed refresh keeps the previous snapshot.
func (w *Watcher) refresh(ctx context.Context) {
	if err := w.catalog.Refresh(ctx); err != nil {
		logger.Warnf("catalog refresh failed: %v", err)
		return
	}

	current := w.catalog.ListAll()
	change := Diff(w.known, current)
	w.known = current
	if change.Empty() {
		return
	}

	select {
	case w.changes <- change:
	case <-w.stopCh:
	case <-ctx.Done():
	}
}

// Diff returns the ids present only in after (added) and only in before
// (removed), each sorted.
func Diff(before, after []string) Change {
	prev := make(map[string]struct{}, len(before))
	for _, id := range before {
		prev[id] = struct{}{}
	}
	next := make(map[string]struct{}, len(after))
	for _, id := range after {
		next[id] = struct{}{}
	}

	var change Change
	for id := range next {
		if _, ok := prev[id]; !ok {
			change.Added = append(change.Added, id)
		}
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			change.Removed = append(change.Removed, id)
		}
	}
	sort.Strings(change.Added)
	sort.Strings(change.Removed)
	return change
}

func isReceiptFile(name string) bool {
	switch filepath.Ext(name) {
	case ".plist", ".bom":
		return true
	}
	return false
}
