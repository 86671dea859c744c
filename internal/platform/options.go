package platform

import (
	"io"
	"log/slog"
	"os"

	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// options holds the internal configuration for the City Scout service.
type options struct {
	source       core.Source
	emitter      core.Emitter
	logger       *slog.Logger
	dryRun       bool
	output       io.Writer
	errorHandler func(docID string, err error)
	sourceErrors func(error)
}

// Option defines a functional option for configuring City Scout.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		output: os.Stdout,
	}
}

func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSource injects a change source (e.g. a fake in tests).
// If provided, the configured source type is ignored.
func WithSource(source core.Source) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithEmitter injects a catalog emitter.
// If provided, both the DataHub and the dry-run emitters are skipped.
func WithEmitter(emitter core.Emitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithDryRun prints proposals instead of sending them to the catalog.
func WithDryRun(enabled bool) Option {
	return func(o *options) {
		o.dryRun = enabled
	}
}

// WithOutput sets where dry-run proposals are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithErrorHandler registers a callback for documents that failed to publish.
// Failures are logged either way; the listener keeps going.
func WithErrorHandler(fn func(docID string, err error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithSourceErrorHandler registers a callback for runtime source failures
// (e.g. permission denied on a watched file, a broken Firestore stream).
func WithSourceErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.sourceErrors = fn
	}
}
