package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// PollingWatcher watches a single file for changes by periodically stat-ing
// it. Used as a fallback when fsnotify is not available or fails.
type PollingWatcher struct {
	interval time.Duration
	state    *fileSnapshot // nil until the file is first observed
	events   chan FileEvent
	errors   chan error
	stopCh   chan struct{}
	mu       sync.RWMutex
	stopped  bool
	path     string
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// NewPollingWatcher creates a new polling watcher with the given interval.
func NewPollingWatcher(interval time.Duration) *PollingWatcher {
	return &PollingWatcher{
		interval: interval,
		events:   make(chan FileEvent, 100),
		errors:   make(chan error, 10),
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching the given file by polling.
func (p *PollingWatcher) Start(ctx context.Context, path string) error {
	p.path = path

	// Initial scan to establish baseline; a missing file is not an error,
	// the watcher just waits for it to be created.
	p.scan()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

// Stop stops the polling watcher.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}

	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan FileEvent {
	return p.events
}

// Errors returns the channel of errors.
func (p *PollingWatcher) Errors() <-chan error {
	return p.errors
}

// scan records the current state of the watched file, if it exists.
func (p *PollingWatcher) scan() {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := os.Stat(p.path)
	if err != nil {
		p.state = nil
		return
	}
	p.state = &fileSnapshot{modTime: info.ModTime(), size: info.Size()}
}

// detectChanges compares the current file state with the previous state and
// emits an event on create, modify, or delete.
func (p *PollingWatcher) detectChanges() {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := os.Stat(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			select {
			case p.errors <- fmt.Errorf("stat %s: %w", p.path, err):
			default:
			}
			return
		}
		if p.state != nil {
			p.state = nil
			p.emitEvent(FileEvent{Path: p.path, Operation: OpDelete, Timestamp: time.Now()})
		}
		return
	}

	current := fileSnapshot{modTime: info.ModTime(), size: info.Size()}

	switch {
	case p.state == nil:
		p.emitEvent(FileEvent{Path: p.path, Operation: OpCreate, Timestamp: time.Now()})
	case p.state.modTime != current.modTime || p.state.size != current.size:
		p.emitEvent(FileEvent{Path: p.path, Operation: OpModify, Timestamp: time.Now()})
	}

	p.state = &current
}

// emitEvent sends an event to the events channel.
// Must be called with lock held.
func (p *PollingWatcher) emitEvent(event FileEvent) {
	if p.stopped {
		return
	}

	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()),
		)
	}
}
