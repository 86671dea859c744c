package core

import (
	"context"

	"github.com/lakshay-nasa/city-scout/pkg/catalog"
)

// Source delivers the changes of a document collection.
// Adhering to this interface keeps the core independent of the
// underlying store (Firestore, local files, ...).
type Source interface {
	// Watch subscribes to a collection. The returned channel is closed when
	// ctx is cancelled or the subscription ends.
	Watch(ctx context.Context, collection string) (<-chan Snapshot, error)
}

// Emitter sends metadata change proposals to the catalog.
type Emitter interface {
	Emit(ctx context.Context, mcp catalog.MetadataChangeProposal) error
}

// DocumentPublisher turns one document into catalog metadata.
type DocumentPublisher interface {
	Publish(ctx context.Context, docID string, fields Fields, exported bool) error
}

// Failing is implemented by sources that can report why their channel closed.
type Failing interface {
	Err() error
}
