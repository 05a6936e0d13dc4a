package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lunarspaceport/partforge/config"
)

// debounceDelay coalesces the event bursts editors emit on save.
const debounceDelay = 200 * time.Millisecond

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch <model-file>",
		Short: "Recompile a model file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return watchFile(cmd, args[0], output, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default <input>.json)")
	return cmd
}

func watchFile(cmd *cobra.Command, path, output string, cfg config.Config, logger *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: editors that write via
	// rename-and-replace would otherwise drop the watch on first save.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	logger.Info("watching", zap.String("file", path))
	if err := convertFile(path, output, cfg, logger); err != nil {
		logger.Error("compile failed", zap.Error(err))
	}

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounceDelay)
			timerCh = timer.C
		} else {
			timer.Reset(debounceDelay)
		}
	}

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watch stopped")
			return nil

		case <-timerCh:
			if err := convertFile(path, output, cfg, logger); err != nil {
				logger.Error("compile failed", zap.Error(err))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, absErr := filepath.Abs(ev.Name)
			if absErr != nil || abs != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", zap.Error(watchErr))
		}
	}
}
