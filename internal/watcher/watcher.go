// Package watcher detects changes to the backing dataset file and emits a
// single change signal per burst of writes. Because the store's only write
// primitive is an atomic rename, a change always appears as a whole new
// file; the watcher never observes a partial write.
//
// The poll interval plus the debounce window is the system's staleness
// bound: the longest time between a committed write and that change
// becoming visible to new questions.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"warehouse-rag/internal/logger"
)

// Watcher observes one dataset file. Filesystem events give low latency;
// a periodic stat poll catches anything events miss (network filesystems,
// editors that write via unwatched paths).
type Watcher struct {
	path     string
	poll     time.Duration
	debounce time.Duration
	changes  chan struct{}
}

// New creates a watcher for the dataset at path.
func New(path string, poll, debounce time.Duration) *Watcher {
	if poll <= 0 {
		poll = time.Second
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		path:     path,
		poll:     poll,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}
}

// Changes delivers one signal per debounced burst of dataset writes.
// The channel has capacity one; signals arriving while a re-index is in
// flight coalesce into a single pending signal.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run watches until the context is canceled. The fsnotify watch is on the
// dataset's directory, not the file: an atomic rename replaces the inode,
// which would silently detach a file-level watch.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, falling back to polling only: %v", err)
		fsw = nil
	} else {
		defer fsw.Close()
		if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			logger.Warn("cannot watch %s, falling back to polling only: %v", filepath.Dir(w.path), err)
		}
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	var debounceC <-chan time.Time
	var debounceTimer *time.Timer
	lastMod, lastSize := w.stamp()

	arm := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(w.debounce)
			debounceC = debounceTimer.C
			return
		}
		if !debounceTimer.Stop() {
			select {
			case <-debounceTimer.C:
			default:
			}
		}
		debounceTimer.Reset(w.debounce)
	}

	var events chan fsnotify.Event
	var errs chan error
	if fsw != nil {
		events = fsw.Events
		errs = fsw.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("dataset event: %s", ev.Op)
			lastMod, lastSize = w.stamp()
			arm()

		case err := <-errs:
			logger.Warn("watch error: %v", err)

		case <-ticker.C:
			mod, size := w.stamp()
			if mod != lastMod || size != lastSize {
				logger.Debug("dataset changed on poll (mtime %v -> %v)", lastMod, mod)
				lastMod, lastSize = mod, size
				arm()
			}

		case <-debounceC:
			debounceC = nil
			debounceTimer = nil
			select {
			case w.changes <- struct{}{}:
			default:
				// A signal is already pending; the next re-index covers
				// this change too.
			}
		}
	}
}

func (w *Watcher) stamp() (time.Time, int64) {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}, -1
	}
	return info.ModTime(), info.Size()
}
