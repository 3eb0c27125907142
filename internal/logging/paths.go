package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.flatvec/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".flatvec", "logs")
	}
	return filepath.Join(home, ".flatvec", "logs")
}

// DefaultLogPath returns the default flatvec engine log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "flatvec.log")
}

// FetchLogPath returns the flatvec-fetch ingestion binary's log path.
func FetchLogPath() string {
	return filepath.Join(DefaultLogDir(), "flatvec-fetch.log")
}

// LogSource represents the source of logs to view.
type LogSource string

const (
	// LogSourceEngine is the flatvec query/build/bench binary's logs (default).
	LogSourceEngine LogSource = "engine"
	// LogSourceFetch is the flatvec-fetch ingestion binary's logs.
	LogSourceFetch LogSource = "fetch"
	// LogSourceAll combines all log sources.
	LogSourceAll LogSource = "all"
)

// FindLogFile attempts to find the log file for viewing.
// Priority:
// 1. Explicit path (if provided)
// 2. ~/.flatvec/logs/flatvec.log (global)
//
// Returns an error if no log file is found.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	// Try global path
	globalPath := DefaultLogPath()
	if _, err := os.Stat(globalPath); err == nil {
		return globalPath, nil
	}

	return "", fmt.Errorf("no log file found. flatvec may not have run with --debug yet.\nExpected at: %s", globalPath)
}

// FindLogFileBySource finds log files based on the source type.
// Returns a list of log file paths that exist.
func FindLogFileBySource(source LogSource, explicit string) ([]string, error) {
	// Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return []string{explicit}, nil
		}
		return nil, fmt.Errorf("log file not found: %s", explicit)
	}

	var paths []string
	var checked []string

	switch source {
	case LogSourceEngine:
		enginePath := DefaultLogPath()
		checked = append(checked, enginePath)
		if _, err := os.Stat(enginePath); err == nil {
			paths = append(paths, enginePath)
		}

	case LogSourceFetch:
		fetchPath := FetchLogPath()
		checked = append(checked, fetchPath)
		if _, err := os.Stat(fetchPath); err == nil {
			paths = append(paths, fetchPath)
		}

	case LogSourceAll:
		enginePath := DefaultLogPath()
		fetchPath := FetchLogPath()
		checked = append(checked, enginePath, fetchPath)

		if _, err := os.Stat(enginePath); err == nil {
			paths = append(paths, enginePath)
		}
		if _, err := os.Stat(fetchPath); err == nil {
			paths = append(paths, fetchPath)
		}

	default:
		return nil, fmt.Errorf("unknown log source: %s (use: engine, fetch, all)", source)
	}

	if len(paths) == 0 {
		hint := getLogHint(source)
		return nil, fmt.Errorf("no log files found for source '%s'.\nChecked: %v\n\n%s", source, checked, hint)
	}

	return paths, nil
}

// ParseLogSource parses a string into a LogSource.
func ParseLogSource(s string) LogSource {
	switch s {
	case "fetch":
		return LogSourceFetch
	case "all":
		return LogSourceAll
	default:
		return LogSourceEngine
	}
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	dir := DefaultLogDir()
	return os.MkdirAll(dir, 0o755)
}

// getLogHint returns a helpful message on how to generate logs for the given source.
func getLogHint(source LogSource) string {
	switch source {
	case LogSourceEngine:
		return "To generate engine logs:\n  flatvec --debug query <vector-file>"
	case LogSourceFetch:
		return "To generate fetch logs:\n  flatvec-fetch"
	case LogSourceAll:
		return "To generate logs:\n  Engine: flatvec --debug query <vector-file>\n  Fetch:  flatvec-fetch"
	default:
		return ""
	}
}
