package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
	stage   Stage
	errors  []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		noColor: cfg.NoColor,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage = event.Stage

	// Format: [STAGE] current/total - message or detail
	var msg string
	if event.Message != "" {
		msg = event.Message
	} else if event.Detail != "" {
		msg = event.Detail
	}

	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, msg)
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}

	if event.File != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.File, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Complete: %d vectors (%d dims) scanned in %s",
		stats.Vectors, stats.Dimensions, stats.Duration.Round(100*millisecond))

	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}

	_, _ = fmt.Fprintln(r.out)

	// Show detailed stage breakdown if available
	if stats.Stages.Load > 0 || stats.Stages.Score > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "Stage Breakdown:")
		_, _ = fmt.Fprintf(r.out, "  Load:     %s (header + mmap)\n", stats.Stages.Load.Round(100*millisecond))
		_, _ = fmt.Fprintf(r.out, "  Allocate: %s (memchunk setup)\n", stats.Stages.Allocate.Round(100*millisecond))
		if stats.Stages.Score > 0 && stats.Vectors > 0 {
			vecsPerSec := float64(stats.Vectors) / stats.Stages.Score.Seconds()
			_, _ = fmt.Fprintf(r.out, "  Score:    %s (%d vectors @ %.1f/sec)\n",
				stats.Stages.Score.Round(100*millisecond), stats.Vectors, vecsPerSec)
		}
		_, _ = fmt.Fprintf(r.out, "  Select:   %s (top-%d)\n", stats.Stages.Select.Round(100*millisecond), stats.TopK)
	}

	// Show compute backend info if available
	if stats.Backend.Backend != "" {
		_, _ = fmt.Fprintln(r.out)
		if stats.Backend.Device != "" {
			_, _ = fmt.Fprintf(r.out, "Backend: %s (%s / %s)\n",
				stats.Backend.Backend, stats.Backend.Platform, stats.Backend.Device)
		} else {
			_, _ = fmt.Fprintf(r.out, "Backend: %s\n", stats.Backend.Backend)
		}
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

const millisecond = 1000000 // nanoseconds
