package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFile runs path once, then again after every change to it until ctx
// is cancelled. Changes closer together than the configured debounce are
// folded into one run. Run failures are reported and watching continues.
func watchFile(ctx context.Context, opts *options, path string) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fsWatcher.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	// Watch the directory: editors often replace the file rather than write it
	dir := filepath.Dir(absPath)
	if err := fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	opts.log.Infof("watching %s", path)

	rerun := func() {
		content, err := os.ReadFile(path)
		if err != nil {
			opts.log.Errorf("reading %s: %v", path, err)
			return
		}
		if err := runSource(opts, path, string(content)); err != nil {
			opts.log.Debugf("run of %s failed", path)
		}
	}
	rerun()

	return watchLoop(ctx, fsWatcher, absPath, opts.cfg.Watch.Debounce, opts.log, rerun)
}

// watchLoop calls fn once events for target have been quiet for debounce.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, target string, debounce time.Duration, log *logger, fn func()) error {
	// fire is nil while no change is pending
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debugf("change: %s", event)
			fire = time.After(debounce)

		case <-fire:
			fire = nil
			log.Infof("%s changed, re-running", filepath.Base(target))
			fn()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watcher error: %v", err)
		}
	}
}
