// Package watcher reports EDL files appearing or changing in a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

const DefaultInterval = 2 * time.Second

type fileState struct {
	modTime time.Time
	size    int64
}

// PollingWatcher scans a directory on a fixed interval. A file is reported
// only once its size and modification time are unchanged across two scans,
// so files still being copied in are not picked up half written.
type PollingWatcher struct {
	interval time.Duration
	ext      string
	logger   *slog.Logger

	mu       sync.Mutex
	callback func(path string, event EventType)
	cancel   context.CancelFunc

	seen     map[string]fileState
	reported map[string]fileState
}

// NewPollingWatcher watches files with extension ext (case-insensitive).
func NewPollingWatcher(interval time.Duration, ext string, logger *slog.Logger) *PollingWatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &PollingWatcher{
		interval: interval,
		ext:      strings.ToLower(ext),
		logger:   logger,
		seen:     make(map[string]fileState),
		reported: make(map[string]fileState),
	}
}

func (w *PollingWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = callback
}

// Watch blocks until ctx is done or Stop is called.
func (w *PollingWatcher) Watch(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to watch %s: not a directory", path)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	defer cancel()

	w.logger.Info("watching directory", "path", path, "interval", w.interval.String(), "ext", w.ext)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.scan(path); err != nil {
			w.logger.Warn("directory scan failed", "path", path, "error", err)
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
	return nil
}

func (w *PollingWatcher) scan(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	current := make(map[string]fileState, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) != w.ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		current[filepath.Join(dir, e.Name())] = fileState{modTime: info.ModTime(), size: info.Size()}
	}

	for p, st := range current {
		prev, ok := w.seen[p]
		if !ok || prev != st {
			continue
		}
		last, wasReported := w.reported[p]
		switch {
		case !wasReported:
			w.reported[p] = st
			w.emit(p, EventCreate)
		case last != st:
			w.reported[p] = st
			w.emit(p, EventModify)
		}
	}

	for p := range w.reported {
		if _, ok := current[p]; !ok {
			delete(w.reported, p)
			w.emit(p, EventDelete)
		}
	}

	w.seen = current
	return nil
}

func (w *PollingWatcher) emit(path string, event EventType) {
	w.mu.Lock()
	cb := w.callback
	w.mu.Unlock()

	w.logger.Debug("file event", "path", path, "event", event.String())
	if cb != nil {
		cb(path, event)
	}
}
