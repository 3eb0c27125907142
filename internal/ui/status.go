package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo contains VecDb health information.
type StatusInfo struct {
	// VecDb stats
	DbPath      string    `json:"db_path"`
	TotalVecs   int       `json:"total_vectors"`
	Dimensions  int       `json:"dimensions"`
	LastBuilt   time.Time `json:"last_built"`

	// Storage sizes (in bytes)
	HeaderSize int64 `json:"header_size"`
	DataSize   int64 `json:"data_size"`
	TotalSize  int64 `json:"total_size"`

	// Component status
	BackendType   string `json:"backend_type"`   // "cpu" or "gpu"
	BackendStatus string `json:"backend_status"` // "ready", "offline", "error"
	BackendDevice string `json:"backend_device,omitempty"`
	WatcherStatus string `json:"watcher_status"` // "running", "stopped", "n/a"
}

// StatusRenderer displays VecDb status.
type StatusRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	// Header
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("VecDb Status: "+info.DbPath))

	// VecDb stats
	_, _ = fmt.Fprintf(r.out, "  Vectors:    %d\n", info.TotalVecs)
	_, _ = fmt.Fprintf(r.out, "  Dimensions: %d\n", info.Dimensions)
	if !info.LastBuilt.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Last built: %s\n", formatTime(info.LastBuilt))
	}
	_, _ = fmt.Fprintln(r.out)

	// Storage sizes
	_, _ = fmt.Fprintln(r.out, "  Storage:")
	_, _ = fmt.Fprintf(r.out, "    Header: %s\n", FormatBytes(info.HeaderSize))
	_, _ = fmt.Fprintf(r.out, "    Data:   %s\n", FormatBytes(info.DataSize))
	_, _ = fmt.Fprintf(r.out, "    Total:  %s\n", FormatBytes(info.TotalSize))
	_, _ = fmt.Fprintln(r.out)

	// Backend status
	_, _ = fmt.Fprintln(r.out, "  Backend:")
	_, _ = fmt.Fprintf(r.out, "    Type:   %s\n", info.BackendType)
	_, _ = fmt.Fprintf(r.out, "    Status: %s\n", r.renderStatus(info.BackendStatus))
	if info.BackendDevice != "" {
		_, _ = fmt.Fprintf(r.out, "    Device: %s\n", info.BackendDevice)
	}
	_, _ = fmt.Fprintln(r.out)

	// Watcher status
	if info.WatcherStatus != "" && info.WatcherStatus != "n/a" {
		_, _ = fmt.Fprintf(r.out, "  Watcher: %s\n", r.renderStatus(info.WatcherStatus))
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready", "running":
		return r.styles.Success.Render(status)
	case "offline", "stopped":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
