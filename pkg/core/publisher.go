package core

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lakshay-nasa/city-scout/pkg/catalog"
)

// Tags always attached to an itinerary dataset, after its status tag.
var fixedTags = []string{"Creator_Content", "AI_Ready_Tabular", "Geospatial_PII"}

const (
	tagStatusExported = "Status:Exported"
	tagStatusDraft    = "Status:Draft"

	lifecycleProduction = "Production"
	lifecycleStaging    = "Staging"
)

// ExternalSource describes the upstream provider every itinerary is derived from.
type ExternalSource struct {
	Platform    string
	Name        string
	Env         string
	Description string
	Provider    string
	Interface   string
}

// CatalogConfig controls how documents map to catalog entities.
type CatalogConfig struct {
	Platform   string // e.g. "firestore"
	NamePrefix string // e.g. "itinerary_"
	Env        string
	AppSource  string // value of the "source" custom property
	External   ExternalSource
}

// DefaultCatalogConfig returns the mapping used by the CityScout app.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Platform:   "firestore",
		NamePrefix: "itinerary_",
		Env:        catalog.EnvProd,
		AppSource:  "CityScout_App",
		External: ExternalSource{
			Platform:    "external",
			Name:        "Google_Places_API",
			Env:         catalog.EnvProd,
			Description: "External Google Places API providing geospatial landmark data.",
			Provider:    "Google",
			Interface:   "REST API",
		},
	}
}

// Publisher builds the metadata of an itinerary and emits it to the catalog.
type Publisher struct {
	emitter Emitter
	config  CatalogConfig
	logger  *slog.Logger
}

// NewPublisher creates a Publisher. A nil logger discards output.
func NewPublisher(emitter Emitter, config CatalogConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{emitter: emitter, config: config, logger: logger}
}

// DatasetURN returns the catalog identifier of a document. It depends on the ID only.
func (p *Publisher) DatasetURN(docID string) string {
	return catalog.DatasetURN(p.config.Platform, p.config.NamePrefix+docID, p.config.Env)
}

// ExternalSourceURN returns the identifier of the upstream provider.
func (p *Publisher) ExternalSourceURN() string {
	ext := p.config.External
	return catalog.DatasetURN(ext.Platform, ext.Name, ext.Env)
}

// BuildProposals returns the properties, tags and lineage upserts for a document, in emit order.
func (p *Publisher) BuildProposals(docID string, fields Fields, exported bool) []catalog.MetadataChangeProposal {
	urn := p.DatasetURN(docID)
	userName := fields.UserName()

	lifecycleState := lifecycleStaging
	statusTag := tagStatusDraft
	if exported {
		lifecycleState = lifecycleProduction
		statusTag = tagStatusExported
	}

	properties := catalog.DatasetProperties{
		Description: fmt.Sprintf("Travel itinerary created by %s.", userName),
		CustomProperties: map[string]string{
			"doc_id":           docID,
			"user":             userName,
			"location_count":   strconv.Itoa(fields.LocationCount()),
			"tabular_ml_ready": "true",
			"source":           p.config.AppSource,
			"lifecycle_state":  lifecycleState,
		},
	}

	tags := catalog.NewGlobalTags(append([]string{statusTag}, fixedTags...)...)

	lineage := catalog.UpstreamLineage{
		Upstreams: []catalog.Upstream{
			catalog.NewUpstream(p.ExternalSourceURN(), catalog.LineageTransformed),
		},
	}

	return []catalog.MetadataChangeProposal{
		catalog.NewDatasetUpsert(urn, properties),
		catalog.NewDatasetUpsert(urn, tags),
		catalog.NewDatasetUpsert(urn, lineage),
	}
}

// Publish emits the three aspects of a document sequentially.
// The first failing emit stops the sequence; aspects already written stay written.
func (p *Publisher) Publish(ctx context.Context, docID string, fields Fields, exported bool) error {
	if docID == "" {
		return Error.Wrap(ErrEmptyID)
	}
	if p.emitter == nil {
		return Error.New("no emitter configured")
	}

	meta := catalog.NewSystemMetadata("")
	for _, mcp := range p.BuildProposals(docID, fields, exported) {
		mcp.SystemMetadata = &meta
		if err := p.emitter.Emit(ctx, mcp); err != nil {
			return Error.Wrap(fmt.Errorf("emit %s for %s: %w", mcp.AspectName, docID, err))
		}
	}

	status := "DRAFT"
	if exported {
		status = "EXPORTED"
	}
	p.logger.Info("metadata and lineage pushed", "doc_id", docID, "status", status, "urn", p.DatasetURN(docID))
	return nil
}

// RegisterSource upserts the properties of the external provider so it shows up in lineage graphs.
func (p *Publisher) RegisterSource(ctx context.Context) error {
	if p.emitter == nil {
		return Error.New("no emitter configured")
	}
	ext := p.config.External
	urn := p.ExternalSourceURN()
	p.logger.Info("initializing upstream source", "urn", urn)

	mcp := catalog.NewDatasetUpsert(urn, catalog.DatasetProperties{
		Description: ext.Description,
		CustomProperties: map[string]string{
			"provider":  ext.Provider,
			"interface": ext.Interface,
		},
	})
	meta := catalog.NewSystemMetadata("")
	mcp.SystemMetadata = &meta

	if err := p.emitter.Emit(ctx, mcp); err != nil {
		return Error.Wrap(fmt.Errorf("register source %s: %w", urn, err))
	}
	return nil
}

var _ DocumentPublisher = (*Publisher)(nil)
