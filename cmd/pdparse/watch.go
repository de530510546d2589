package main

import (
	"context"
	"io"
	"time"

	"github.com/ritzau/pd-parser/pkg/analysis"
	"github.com/ritzau/pd-parser/pkg/logging"
	"github.com/ritzau/pd-parser/pkg/output"
	"github.com/ritzau/pd-parser/pkg/watcher"
)

// maxDebounceWait bounds how long a stream of saves can delay a re-parse
const maxDebounceWait = 5 * time.Second

// patchWatcher re-parses the patches below one root when they change
type patchWatcher struct {
	root     string
	runner   *analysis.Runner
	opts     analysis.Options
	debounce time.Duration
	format   output.Format
	strict   bool
	out      io.Writer
}

func (w *patchWatcher) run(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(w.root)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), w.debounce, maxDebounceWait)
	debouncer.Start(ctx)

	// seed the hashes so the first save of an unchanged file is ignored
	detector := watcher.NewChangeDetector()
	for _, fr := range w.runner.Store().List() {
		if _, err := detector.Changed(fr.Path); err != nil {
			logging.Debug("failed to hash patch", "file", fr.Path, "error", err)
		}
	}

	for event := range debouncer.Output() {
		changed := detector.Filter(event)
		if len(changed) == 0 {
			logging.Debug("ignoring save without changes", "paths", len(event.Paths))
			continue
		}

		if event.Type == watcher.ChangeTypeRemoved {
			w.runner.Forget(changed)
			continue
		}

		opts := w.opts
		opts.Reason = "patch changed"
		results, err := w.runner.Run(ctx, changed, opts)
		if err != nil {
			return err
		}
		if err := output.Write(w.out, w.format, results, w.strict); err != nil {
			logging.Error("failed to write results", "error", err)
		}
	}
	return ctx.Err()
}
