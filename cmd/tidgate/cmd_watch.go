package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd re-runs the gate whenever the config document changes. A local
// development loop: edit the vocabulary or requirements, see the gate
// outcome immediately.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the gate when the configuration changes",
	RunE:  runWatch,
}

// debounce absorbs editor save bursts (write + rename + chmod).
const watchDebounce = 500 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors replace files on save and
	// a file-level watch dies with the old inode.
	dir := filepath.Dir(cfgPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(cfgPath)

	runOnce := func() {
		if err := runGate(cmd, nil); err != nil {
			logger.Warn("gate run failed", zap.Error(err))
		}
	}
	runOnce()

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	ctx := cmd.Context()
	logger.Info("watching for config changes", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-pending:
			logger.Info("config changed, re-running gate")
			runOnce()
		}
	}
}
