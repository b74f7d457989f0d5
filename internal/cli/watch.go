package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	apperr "github.com/confgrid/confgrid/pkg/errors"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// watchFile calls rebuild whenever path is written, until ctx is cancelled.
// Rebuild errors are printed and watching continues.
func (c *CLI) watchFile(ctx context.Context, path string, rebuild func(context.Context) error) error {
	logger := loggerFromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file on save, which drops a watch on the
	// file itself.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	printInfo("Watching %s (Ctrl+C to stop)", path)

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("schedule changed", "path", event.Name, "op", event.Op.String())
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			prog := newProgress(logger)
			if err := rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				printError("%s", apperr.UserMessage(err))
				continue
			}
			prog.done("Rebuilt layout")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
