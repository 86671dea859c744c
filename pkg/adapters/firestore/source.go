// Package firestore streams realtime collection changes from Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/zeebo/errs"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// Error is the error class for Firestore failures.
var Error = errs.Class("firestore")

// DefaultEventBuffer is used when Config.EventBuffer is zero.
const DefaultEventBuffer = 100

// Config holds the settings of a Firestore source.
type Config struct {
	// CredentialsFile is a service-account JSON key. Empty uses application default credentials.
	CredentialsFile string
	// ProjectID is detected from the credentials when empty.
	ProjectID    string
	EventBuffer  int
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// snapshotIterator is the subset of *firestore.QuerySnapshotIterator used by the source.
type snapshotIterator interface {
	Next() (*firestore.QuerySnapshot, error)
	Stop()
}

// Source implements core.Source over Firestore realtime listeners.
type Source struct {
	client *firestore.Client
	config Config
	logger *slog.Logger
	open   func(ctx context.Context, collection string) snapshotIterator

	mu        sync.RWMutex
	listening bool
	received  int
	lastErr   error
}

// NewSource connects to Firestore.
func NewSource(ctx context.Context, config Config) (*Source, error) {
	projectID := config.ProjectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}

	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("create client: %w", err))
	}

	s := newSource(config, func(ctx context.Context, collection string) snapshotIterator {
		return client.Collection(collection).Snapshots(ctx)
	})
	s.client = client
	return s, nil
}

func newSource(config Config, open func(ctx context.Context, collection string) snapshotIterator) *Source {
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultEventBuffer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{config: config, logger: logger, open: open}
}

// Watch starts a realtime listener on the collection. The first snapshot
// reports every existing document as added.
func (s *Source) Watch(ctx context.Context, collection string) (<-chan core.Snapshot, error) {
	if collection == "" {
		return nil, Error.New("collection name is required")
	}

	it := s.open(ctx, collection)
	out := make(chan core.Snapshot, s.config.EventBuffer)
	s.setListening(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setListening(false)
		defer it.Stop()
		if err := s.pump(ctx, it, out); err != nil {
			s.fail(err)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.fail(fmt.Errorf("listener panic: %w", err))
	}))

	return out, nil
}

func (s *Source) pump(ctx context.Context, it snapshotIterator, out chan<- core.Snapshot) error {
	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || isStopped(err) {
				return nil
			}
			return Error.Wrap(fmt.Errorf("listen: %w", err))
		}

		snap := convertSnapshot(qs)
		if len(snap.Changes) == 0 {
			continue
		}
		s.mu.Lock()
		s.received++
		s.mu.Unlock()

		select {
		case out <- snap:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Source) fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	s.logger.Error("firestore listener failed", "error", err)
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

// Err returns the error that ended the last subscription, if any.
func (s *Source) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Close releases the Firestore client.
func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	return Error.Wrap(s.client.Close())
}

func (s *Source) setListening(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = v
}

func isStopped(err error) bool {
	return errors.Is(err, iterator.Done) ||
		errors.Is(err, context.Canceled) ||
		status.Code(err) == codes.Canceled
}

func convertSnapshot(qs *firestore.QuerySnapshot) core.Snapshot {
	snap := core.Snapshot{ReadTime: qs.ReadTime}
	for _, dc := range qs.Changes {
		if dc.Doc == nil || dc.Doc.Ref == nil {
			continue
		}
		kind, ok := changeKind(dc.Kind)
		if !ok {
			continue
		}
		snap.Changes = append(snap.Changes, newChange(kind, dc.Doc.Ref.ID, dc.Doc.Data()))
	}
	return snap
}

func changeKind(k firestore.DocumentChangeKind) (core.ChangeKind, bool) {
	switch k {
	case firestore.DocumentAdded:
		return core.ChangeAdded, true
	case firestore.DocumentModified:
		return core.ChangeModified, true
	case firestore.DocumentRemoved:
		return core.ChangeRemoved, true
	default:
		return "", false
	}
}

func newChange(kind core.ChangeKind, id string, data map[string]any) core.Change {
	fields := core.Fields(data)
	if fields == nil {
		fields = core.Fields{}
	}
	return core.Change{Kind: kind, Document: core.Document{ID: id, Fields: fields}}
}

// SourceState exposes internal state for observability.
type SourceState struct {
	ProjectID   string `json:"project_id"`
	Listening   bool   `json:"listening"`
	Snapshots   int    `json:"snapshots"`
	EventBuffer int    `json:"event_buffer"`
	LastError   string `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Source) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := SourceState{
		ProjectID:   s.config.ProjectID,
		Listening:   s.listening,
		Snapshots:   s.received,
		EventBuffer: s.config.EventBuffer,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Source) ComponentType() string {
	return "firestore"
}

var _ core.Source = (*Source)(nil)
var _ introspection.Introspectable = (*Source)(nil)
var _ introspection.Component = (*Source)(nil)
