package core

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ListenerStats counts what the listener has done so far.
type ListenerStats struct {
	Snapshots int       `json:"snapshots"`
	Published int       `json:"published"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	LastError string    `json:"last_error,omitempty"`
	LastEvent time.Time `json:"last_event,omitempty"`
}

// BatchResult summarizes the handling of one snapshot.
type BatchResult struct {
	Published int
	Skipped   int
	Failed    int
}

// Listener forwards added and modified documents to a publisher, one change at a time.
type Listener struct {
	publisher    DocumentPublisher
	logger       *slog.Logger
	errorHandler func(docID string, err error)

	mu    sync.RWMutex
	stats ListenerStats
}

// NewListener creates a Listener. errorHandler may be nil.
func NewListener(publisher DocumentPublisher, logger *slog.Logger, errorHandler func(docID string, err error)) *Listener {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Listener{
		publisher:    publisher,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Run handles snapshots until the channel is closed or ctx is cancelled.
func (l *Listener) Run(ctx context.Context, snapshots <-chan Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			l.Handle(ctx, snap)
		}
	}
}

// Handle processes every change of a snapshot in order.
// A failed publish is logged and counted; the remaining changes are still processed.
func (l *Listener) Handle(ctx context.Context, snap Snapshot) BatchResult {
	var res BatchResult

	for _, change := range snap.Changes {
		if ctx.Err() != nil {
			break
		}

		// Removals never retract the catalog entity.
		if change.Kind != ChangeAdded && change.Kind != ChangeModified {
			l.logger.Debug("change ignored", "kind", change.Kind, "doc_id", change.Document.ID)
			res.Skipped++
			continue
		}

		fields := change.Document.Fields
		if fields == nil {
			fields = Fields{}
		}

		err := l.publisher.Publish(ctx, change.Document.ID, fields, fields.Exported())
		if err != nil {
			res.Failed++
			l.logger.Error("failed to emit to catalog", "doc_id", change.Document.ID, "kind", change.Kind, "error", err)
			l.recordError(err)
			if l.errorHandler != nil {
				l.errorHandler(change.Document.ID, err)
			}
			continue
		}
		res.Published++
	}

	l.record(res)
	return res
}

// Stats returns a copy of the counters.
func (l *Listener) Stats() ListenerStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

func (l *Listener) record(res BatchResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.Snapshots++
	l.stats.Published += res.Published
	l.stats.Skipped += res.Skipped
	l.stats.Failed += res.Failed
	l.stats.LastEvent = time.Now()
}

func (l *Listener) recordError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.LastError = err.Error()
}
