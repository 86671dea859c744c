package catalog

// Aspect names understood by the catalog.
const (
	AspectDatasetProperties = "datasetProperties"
	AspectGlobalTags        = "globalTags"
	AspectUpstreamLineage   = "upstreamLineage"
)

// Aspect is a named facet of a catalog entity.
type Aspect interface {
	AspectName() string
}

// DatasetProperties carries the free-text description and custom properties of a dataset.
type DatasetProperties struct {
	Description      string            `json:"description,omitempty"`
	CustomProperties map[string]string `json:"customProperties"`
}

func (DatasetProperties) AspectName() string { return AspectDatasetProperties }

// TagAssociation links a tag URN to an entity.
type TagAssociation struct {
	Tag string `json:"tag"`
}

// GlobalTags is the full tag set of an entity. Emitting it replaces any previous set.
type GlobalTags struct {
	Tags []TagAssociation `json:"tags"`
}

func (GlobalTags) AspectName() string { return AspectGlobalTags }

// NewGlobalTags builds a tag set from tag names or URNs, preserving order.
func NewGlobalTags(names ...string) GlobalTags {
	tags := make([]TagAssociation, 0, len(names))
	for _, n := range names {
		tags = append(tags, TagAssociation{Tag: TagURN(n)})
	}
	return GlobalTags{Tags: tags}
}

// LineageType describes how a downstream dataset was derived from an upstream one.
type LineageType string

const (
	LineageCopy        LineageType = "COPY"
	LineageTransformed LineageType = "TRANSFORMED"
	LineageView        LineageType = "VIEW"
)

// UnknownActor is the actor recorded when no user is attributable.
const UnknownActor = "urn:li:corpuser:unknown"

// AuditStamp records when and by whom a change was made.
type AuditStamp struct {
	Time  int64  `json:"time"`
	Actor string `json:"actor"`
}

// Upstream is a single lineage edge pointing at the dataset the entity derives from.
type Upstream struct {
	AuditStamp AuditStamp  `json:"auditStamp"`
	Dataset    string      `json:"dataset"`
	Type       LineageType `json:"type"`
}

// UpstreamLineage is the full set of upstream edges of a dataset.
type UpstreamLineage struct {
	Upstreams []Upstream `json:"upstreams"`
}

func (UpstreamLineage) AspectName() string { return AspectUpstreamLineage }

// NewUpstream returns an edge with the zero audit stamp used when lineage is declared, not observed.
func NewUpstream(dataset string, typ LineageType) Upstream {
	return Upstream{
		AuditStamp: AuditStamp{Time: 0, Actor: UnknownActor},
		Dataset:    dataset,
		Type:       typ,
	}
}
