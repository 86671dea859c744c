// Package console provides an emitter that prints proposals instead of sending them.
package console

import (
	"context"
	"io"
	"sync"

	"github.com/lakshay-nasa/city-scout/pkg/adapters/datahub"
	"github.com/lakshay-nasa/city-scout/pkg/catalog"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// Emitter writes each proposal as one line of the JSON body GMS would receive.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEmitter creates an emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) Emit(ctx context.Context, mcp catalog.MetadataChangeProposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := datahub.EncodeProposal(mcp)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(append(body, '\n'))
	return err
}

var _ core.Emitter = (*Emitter)(nil)
