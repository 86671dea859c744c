package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// ServiceConfig holds the optional collaborators of a Service.
type ServiceConfig struct {
	Logger *slog.Logger
	// ErrorHandler is called for every document that failed to publish.
	ErrorHandler func(docID string, err error)
	// EventBufferSize is reported through introspection only; sources own their buffers.
	EventBufferSize int
}

// Service wires a change source to the metadata publisher.
type Service struct {
	source    Source
	publisher *Publisher
	listener  *Listener
	logger    *slog.Logger

	mu              sync.RWMutex
	eventBufferSize int
	collection      string
	running         bool
	sourceReady     bool
}

// NewService creates a new Service.
func NewService(source Source, publisher *Publisher, config ServiceConfig) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		source:          source,
		publisher:       publisher,
		listener:        NewListener(publisher, logger, config.ErrorHandler),
		logger:          logger,
		eventBufferSize: config.EventBufferSize,
	}
}

// Publisher returns the publisher used by the service.
func (s *Service) Publisher() *Publisher {
	return s.publisher
}

// Listener returns the listener used by the service.
func (s *Service) Listener() *Listener {
	return s.listener
}

// Run registers the external source, subscribes to the collection and
// processes changes until ctx is cancelled or the source stops.
// Registration and subscription errors are returned before any change is handled.
func (s *Service) Run(ctx context.Context, collection string) error {
	if s.publisher == nil {
		return Error.Wrap(ErrNoPublisher)
	}
	if s.source == nil {
		return Error.Wrap(ErrNoSource)
	}

	if err := s.publisher.RegisterSource(ctx); err != nil {
		return err
	}
	s.setState(func() { s.sourceReady = true })

	snapshots, err := s.source.Watch(ctx, collection)
	if err != nil {
		return Error.Wrap(fmt.Errorf("watch %s: %w", collection, err))
	}

	s.logger.Info("watching collection for changes", "collection", collection)
	s.setState(func() {
		s.collection = collection
		s.running = true
	})
	defer s.setState(func() { s.running = false })

	if err := s.listener.Run(ctx, snapshots); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	if f, ok := s.source.(Failing); ok && f.Err() != nil {
		return Error.Wrap(fmt.Errorf("source stopped: %w", f.Err()))
	}
	return nil
}

// PublishDocument publishes a single document outside of a watch, deriving the export flag from its fields.
func (s *Service) PublishDocument(ctx context.Context, doc Document) error {
	if s.publisher == nil {
		return Error.Wrap(ErrNoPublisher)
	}
	fields := doc.Fields
	if fields == nil {
		fields = Fields{}
	}
	return s.publisher.Publish(ctx, doc.ID, fields, fields.Exported())
}

// Close releases the source when it holds a connection.
func (s *Service) Close() error {
	if c, ok := s.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Service) setState(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
