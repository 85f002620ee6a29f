package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFile watches the previewed document and calls onChange when it is
// written. The parent directory is watched rather than the file itself, so
// editors that replace the file on save (rename over it) keep working.
// Rapid write bursts are settled before onChange fires.
func watchFile(ctx context.Context, logger *slog.Logger, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	const settle = 100 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(settle)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: error", "error", err)
		}
	}
}
