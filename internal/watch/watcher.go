// Package watch notifies the event broker when the persisted draft files
// change outside this process (another editor, a sync tool).
//
// Correctness never depends on it: every operation re-reads the draft layer
// before merging. The watcher only improves liveness for connected UIs.
package watch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Notifier receives the debounced external-change signal.
type Notifier interface {
	PublishChange(kind, id string)
}

// debounce collapses bursts of file events (atomic writes produce several)
// into one notification.
const debounce = 200 * time.Millisecond

// Run watches the workspace directory until ctx is cancelled. Only the
// draft-layer JSON files are considered; temp files from atomic writes are
// ignored.
func Run(ctx context.Context, root string, logger *slog.Logger, n Notifier) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if n != nil {
				n.PublishChange("drafts.changed", "")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: draft layer changed",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
