// Package watcher provides real-time watching of a single VecDb file with
// automatic debouncing, so a long-running flatvec process can hot-reload the
// matrix it serves queries against without a restart.
//
// The package implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching
//   - Fallback: Polling for environments where fsnotify fails (network mounts, Docker volumes)
//
// Events are debounced to coalesce rapid changes from a rebuild-via-rename,
// where a new VecDb file is written to a temp path and renamed into place.
//
// Usage:
//
//	opts := watcher.DefaultOptions()
//	w, err := watcher.NewHybridWatcher(opts)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	if err := w.Start(ctx, "/path/to/vectors.bin"); err != nil {
//	    return err
//	}
//
//	for events := range w.Events() {
//	    for _, event := range events {
//	        switch event.Operation {
//	        case watcher.OpCreate:
//	            // Handle VecDb creation
//	        case watcher.OpModify, watcher.OpRename:
//	            // Reload the VecDb
//	        case watcher.OpDelete:
//	            // Handle VecDb removal
//	        }
//	    }
//	}
package watcher
