package core_test

import (
	"context"
	"errors"
	"sync"

	"github.com/lakshay-nasa/city-scout/pkg/catalog"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// recordingEmitter stores every proposal in memory.
// failOn maps a 1-based call number to the error returned by that call.
type recordingEmitter struct {
	mu     sync.Mutex
	calls  int
	sent   []catalog.MetadataChangeProposal
	failOn map[int]error
}

func (e *recordingEmitter) Emit(ctx context.Context, mcp catalog.MetadataChangeProposal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if err, ok := e.failOn[e.calls]; ok {
		return err
	}
	e.sent = append(e.sent, mcp)
	return nil
}

func (e *recordingEmitter) proposals() []catalog.MetadataChangeProposal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]catalog.MetadataChangeProposal(nil), e.sent...)
}

var errCatalogDown = errors.New("catalog unavailable")

// chanSource replays a fixed channel of snapshots.
type chanSource struct {
	ch         chan core.Snapshot
	collection string
	err        error
	stopErr    error
}

func (s *chanSource) Err() error { return s.stopErr }

func (s *chanSource) Watch(ctx context.Context, collection string) (<-chan core.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.collection = collection
	return s.ch, nil
}

func aspectsOf(sent []catalog.MetadataChangeProposal) []string {
	names := make([]string, 0, len(sent))
	for _, mcp := range sent {
		names = append(names, mcp.AspectName)
	}
	return names
}
