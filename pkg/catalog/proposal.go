package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityTypeDataset = "dataset"
	ChangeTypeUpsert  = "UPSERT"
)

// SystemMetadata is attached to every proposal so the catalog can trace which run wrote it.
type SystemMetadata struct {
	LastObserved int64  `json:"lastObserved"`
	RunID        string `json:"runId"`
}

// NewSystemMetadata stamps a proposal with the current time and the given run id.
// An empty run id gets a fresh one.
func NewSystemMetadata(runID string) SystemMetadata {
	if runID == "" {
		runID = NewRunID()
	}
	return SystemMetadata{
		LastObserved: time.Now().UnixMilli(),
		RunID:        runID,
	}
}

// NewRunID returns a unique identifier for one publish run.
func NewRunID() string {
	return "cityscout-" + uuid.NewString()
}

// MetadataChangeProposal is a single aspect upsert against one entity.
type MetadataChangeProposal struct {
	EntityType     string          `json:"entityType"`
	ChangeType     string          `json:"changeType"`
	EntityURN      string          `json:"entityUrn"`
	AspectName     string          `json:"aspectName"`
	Aspect         Aspect          `json:"aspect"`
	SystemMetadata *SystemMetadata `json:"systemMetadata,omitempty"`
}

// NewDatasetUpsert builds an UPSERT proposal for a dataset aspect.
func NewDatasetUpsert(urn string, aspect Aspect) MetadataChangeProposal {
	return MetadataChangeProposal{
		EntityType: EntityTypeDataset,
		ChangeType: ChangeTypeUpsert,
		EntityURN:  urn,
		AspectName: aspect.AspectName(),
		Aspect:     aspect,
	}
}

// AspectJSON returns the serialized aspect as expected inside a GenericAspect.
func (p MetadataChangeProposal) AspectJSON() ([]byte, error) {
	return json.Marshal(p.Aspect)
}
