package platform

import (
	"context"
	"fmt"

	"github.com/lakshay-nasa/city-scout/pkg/adapters/console"
	"github.com/lakshay-nasa/city-scout/pkg/adapters/datahub"
	"github.com/lakshay-nasa/city-scout/pkg/adapters/firestore"
	"github.com/lakshay-nasa/city-scout/pkg/adapters/fs"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// svc, err := platform.New(ctx, cfg, platform.WithDryRun(true))
// The source is connected here; call Close on the service when done.
func New(ctx context.Context, cfg Config, opts ...Option) (*core.Service, error) {
	o := applyOptions(opts)

	publisher, err := newPublisher(cfg, o)
	if err != nil {
		return nil, err
	}

	source, err := newSource(ctx, cfg, o)
	if err != nil {
		return nil, err
	}

	return core.NewService(source, publisher, core.ServiceConfig{
		Logger:          o.log(),
		ErrorHandler:    o.errorHandler,
		EventBufferSize: cfg.Source.EventBuffer,
	}), nil
}

// NewPublisher builds only the publishing half, for one-shot commands.
func NewPublisher(cfg Config, opts ...Option) (*core.Publisher, error) {
	return newPublisher(cfg, applyOptions(opts))
}

// NewDataHubEmitter builds the REST emitter from the configuration.
func NewDataHubEmitter(cfg Config, opts ...Option) (*datahub.Emitter, error) {
	o := applyOptions(opts)
	return datahub.NewEmitter(datahub.Config{
		Server:  cfg.DataHub.Server,
		Token:   cfg.DataHub.Token,
		Timeout: cfg.DataHub.Timeout,
		Logger:  o.log(),
	})
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newPublisher(cfg Config, o *options) (*core.Publisher, error) {
	emitter, err := newEmitter(cfg, o)
	if err != nil {
		return nil, err
	}
	return core.NewPublisher(emitter, cfg.Catalog, o.log()), nil
}

func newEmitter(cfg Config, o *options) (core.Emitter, error) {
	if o.emitter != nil {
		return o.emitter, nil
	}
	if o.dryRun {
		return console.NewEmitter(o.output), nil
	}
	return NewDataHubEmitter(cfg, WithLogger(o.logger))
}

func newSource(ctx context.Context, cfg Config, o *options) (core.Source, error) {
	if o.source != nil {
		return o.source, nil
	}

	switch cfg.Source.Type {
	case SourceFirestore:
		src, err := firestore.NewSource(ctx, firestore.Config{
			CredentialsFile: cfg.Firestore.CredentialsFile,
			ProjectID:       cfg.Firestore.ProjectID,
			EventBuffer:     cfg.Source.EventBuffer,
			Logger:          o.log(),
			ErrorHandler:    o.sourceErrors,
		})
		if err != nil {
			return nil, Error.Wrap(fmt.Errorf("connect to firestore: %w", err))
		}
		return src, nil
	case SourceFS:
		return fs.NewCollection(fs.Config{
			Path:         cfg.Source.Dir,
			Pattern:      cfg.Source.Pattern,
			Strict:       cfg.Source.Strict,
			EventBuffer:  cfg.Source.EventBuffer,
			Logger:       o.log(),
			ErrorHandler: o.sourceErrors,
		}), nil
	default:
		return nil, Error.New("unknown source type: %s", cfg.Source.Type)
	}
}
