package cityscout

import (
	"context"
	"io"
	"log/slog"

	"github.com/lakshay-nasa/city-scout/internal/platform"
	"github.com/lakshay-nasa/city-scout/pkg/adapters/fs"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// --- Configuration ---

// Config is the resolved process configuration.
type Config = platform.Config

// LoadConfig reads defaults, an optional cityscout.yaml and CITYSCOUT_* environment overrides.
// An empty path searches for cityscout.yaml from the working directory upwards.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// Option defines a functional option for configuring City Scout.
type Option = platform.Option

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithSource injects a change source, bypassing the configured one.
func WithSource(source core.Source) Option {
	return platform.WithSource(source)
}

// WithEmitter injects a catalog emitter, bypassing DataHub.
func WithEmitter(emitter core.Emitter) Option {
	return platform.WithEmitter(emitter)
}

// WithDryRun prints proposals instead of sending them.
func WithDryRun(enabled bool) Option {
	return platform.WithDryRun(enabled)
}

// WithOutput sets where dry-run proposals are written.
func WithOutput(w io.Writer) Option {
	return platform.WithOutput(w)
}

// WithErrorHandler registers a callback for documents that failed to publish.
func WithErrorHandler(fn func(docID string, err error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithSourceErrorHandler registers a callback for runtime source failures.
func WithSourceErrorHandler(fn func(error)) Option {
	return platform.WithSourceErrorHandler(fn)
}

// --- Factory ---

// New connects the configured source and catalog and returns the service.
func New(ctx context.Context, cfg Config, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, cfg, opts...)
}

// NewPublisher builds a publisher without a source, for one-shot publishing.
func NewPublisher(cfg Config, opts ...Option) (*core.Publisher, error) {
	return platform.NewPublisher(cfg, opts...)
}

// ReadDocument parses a JSON, YAML or Markdown file into a document named after the file.
func ReadDocument(path string) (core.Document, error) {
	return fs.ReadDocument(path, false)
}
