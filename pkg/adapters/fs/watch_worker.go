package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/lakshay-nasa/city-scout/pkg/core"
)

type watchWorker struct {
	*worker.BaseWorker
	coll      *Collection
	dir       string
	events    chan<- core.Snapshot
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(coll *Collection, dir string, events chan<- core.Snapshot) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		coll:       coll,
		dir:        dir,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := addRecursive(watcher, w.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.coll.config.Debounce)
	w.coll.setWatcherActive(w.dir, true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"dir":               w.dir,
		}
	})
}

// run is the main loop of the watcher worker. It owns the events channel and closes it on exit.
func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.coll.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer close(w.events)
	defer w.coll.setWatcherActive(w.dir, false)
	defer w.watcher.Close()

	if err := w.sendInitial(ctx); err != nil {
		return err
	}

	err = w.mainEventLoop(ctx)

	// No timer may send after the channel is closed.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

// sendInitial emits every existing document as ADDED, like the first Firestore snapshot.
func (w *watchWorker) sendInitial(ctx context.Context) error {
	entries, err := w.coll.scanDir(ctx, w.dir)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	w.coll.index.Reset()
	snap := core.Snapshot{ReadTime: time.Now()}
	for _, e := range entries {
		w.coll.index.Put(e.ID, e.Path, e.ModTime)
		snap.Changes = append(snap.Changes, core.Change{Kind: core.ChangeAdded, Document: e.Document})
	}

	if len(snap.Changes) == 0 {
		return nil
	}
	w.send(ctx, snap)
	return nil
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.coll.config.Logger.Error("fsnotify error", "error", wErr)
			if w.coll.config.ErrorHandler != nil {
				w.coll.config.ErrorHandler(wErr)
			}
		}
	}
}

// processFilesystemEvent filters an fsnotify event and debounces it per path.
// The change kind is decided when the debounced call fires, from the file's
// presence on disk and the index.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) {
	logger := w.coll.config.Logger
	logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if isHidden(info.Name()) {
				return
			}
			if err := addRecursive(w.watcher, event.Name); err != nil {
				w.coll.reportError(err)
			}
			// Files may have landed before the watch was added.
			w.scheduleDir(ctx, event.Name)
			return
		}
	}

	if event.Op == fsnotify.Chmod {
		return
	}
	if !w.coll.accepts(w.dir, event.Name) {
		return
	}

	path := event.Name
	w.debouncer.add(path, func() {
		change, ok := w.resolve(path)
		if !ok {
			return
		}
		w.send(ctx, core.Snapshot{ReadTime: time.Now(), Changes: []core.Change{change}})
	})
}

func (w *watchWorker) scheduleDir(ctx context.Context, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		w.processFilesystemEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create})
		return nil
	})
}

// resolve turns a path into a change, or reports false when nothing changed.
func (w *watchWorker) resolve(path string) (core.Change, bool) {
	id, err := resolveID(w.dir, path)
	if err != nil {
		w.coll.reportError(fmt.Errorf("failed to resolve ID for %s: %w", path, err))
		return core.Change{}, false
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if !w.coll.index.Remove(id) {
			return core.Change{}, false
		}
		return core.Change{Kind: core.ChangeRemoved, Document: core.Document{ID: id, Fields: core.Fields{}}}, true
	}
	if err != nil {
		w.coll.reportError(err)
		return core.Change{}, false
	}
	if info.IsDir() {
		return core.Change{}, false
	}

	known, changed := w.coll.index.Put(id, path, info.ModTime())
	if known && !changed {
		return core.Change{}, false
	}

	fields, err := w.coll.parseFile(path)
	if err != nil {
		if !known {
			// A later, complete write must still count as an addition.
			w.coll.index.Remove(id)
		}
		w.coll.reportError(err)
		return core.Change{}, false
	}

	kind := core.ChangeAdded
	if known {
		kind = core.ChangeModified
	}
	return core.Change{Kind: kind, Document: core.Document{ID: id, Fields: fields}}, true
}

// send delivers a snapshot, protecting against channel closure during shutdown.
func (w *watchWorker) send(ctx context.Context, snap core.Snapshot) {
	defer func() {
		_ = recover()
	}()
	select {
	case w.events <- snap:
	case <-ctx.Done():
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
