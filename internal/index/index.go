package index

import (
	"github.com/paulmach/orb"

	"github.com/wegman-software/osmgeom/internal/config"
	"github.com/wegman-software/osmgeom/internal/osmxml"
	"github.com/wegman-software/osmgeom/internal/proj"
)

// Node is an indexed node record. Used is set the first time any way
// references the node during the same indexing pass.
type Node struct {
	ID      int64
	Point   orb.Point
	Version int
	Tags    map[string]string
	Used    bool
}

// Way is an indexed way record. Refs are kept verbatim and unresolved;
// dangling references are tolerated and resolved lazily by consumers.
type Way struct {
	ID          int64
	Refs        []int64
	Version     int
	Tags        map[string]string
	Interesting bool
}

// Member is one relation member reference with its optional role.
type Member struct {
	Ref  int64
	Role string
}

// Relation is an indexed relation record. Members are partitioned by kind
// with document order preserved within each list, since member order is
// significant for path assembly.
type Relation struct {
	ID          int64
	Version     int
	Tags        map[string]string
	NodeMembers []Member
	WayMembers  []Member
	RelMembers  []Member
}

// Tables holds the three id-keyed lookup tables built from one document.
// The order slices record insertion (document) order for iteration.
type Tables struct {
	Nodes     map[int64]*Node
	NodeOrder []int64

	Ways     map[int64]*Way
	WayOrder []int64

	Relations     map[int64]*Relation
	RelationOrder []int64
}

// ResolveWay returns the way's point sequence, skipping dangling node refs,
// and the ids of the nodes that resolved, aligned with the points.
func (t *Tables) ResolveWay(w *Way) (orb.LineString, []int64) {
	line := make(orb.LineString, 0, len(w.Refs))
	refs := make([]int64, 0, len(w.Refs))
	for _, ref := range w.Refs {
		n, ok := t.Nodes[ref]
		if !ok {
			continue
		}
		line = append(line, n.Point)
		refs = append(refs, ref)
	}
	return line, refs
}

// Indexer scans a document into lookup tables, applying the tag filter and
// the configured projection while indexing.
type Indexer struct {
	tagChecking bool
	excluded    map[string]struct{}
	transformer *proj.Transformer
}

// NewIndexer creates an indexer from the conversion settings.
func NewIndexer(cfg *config.Config) (*Indexer, error) {
	transformer, err := proj.NewTransformer(cfg.SourceSRID, cfg.TargetSRID)
	if err != nil {
		return nil, err
	}
	return &Indexer{
		tagChecking: cfg.TagChecking,
		excluded:    cfg.ExcludedTagSet(),
		transformer: transformer,
	}, nil
}

// Index builds the node, way and relation tables in one linear pass per
// element kind. No cross-table validation happens here.
func (ix *Indexer) Index(doc *osmxml.Document) *Tables {
	t := &Tables{
		Nodes:     make(map[int64]*Node, len(doc.Nodes)),
		Ways:      make(map[int64]*Way, len(doc.Ways)),
		Relations: make(map[int64]*Relation, len(doc.Relations)),
	}

	for _, n := range doc.Nodes {
		point := orb.Point{n.Lon, n.Lat}
		if ix.transformer.NeedsTransform() {
			point = ix.transformer.TransformPoint(point)
		}
		if _, ok := t.Nodes[n.ID]; !ok {
			t.NodeOrder = append(t.NodeOrder, n.ID)
		}
		t.Nodes[n.ID] = &Node{
			ID:      n.ID,
			Point:   point,
			Version: n.Version,
			Tags:    osmxml.TagMap(n.Tags),
		}
	}

	for _, w := range doc.Ways {
		refs := make([]int64, 0, len(w.Refs))
		for _, r := range w.Refs {
			refs = append(refs, r.Ref)
			if n, ok := t.Nodes[r.Ref]; ok {
				n.Used = true
			}
		}
		tags := osmxml.TagMap(w.Tags)
		interesting := true
		if ix.tagChecking {
			interesting = HasInterestingTags(tags, ix.excluded)
		}
		if _, ok := t.Ways[w.ID]; !ok {
			t.WayOrder = append(t.WayOrder, w.ID)
		}
		t.Ways[w.ID] = &Way{
			ID:          w.ID,
			Refs:        refs,
			Version:     w.Version,
			Tags:        tags,
			Interesting: interesting,
		}
	}

	for _, r := range doc.Relations {
		rel := &Relation{
			ID:      r.ID,
			Version: r.Version,
			Tags:    osmxml.TagMap(r.Tags),
		}
		for _, m := range r.Members {
			member := Member{Ref: m.Ref, Role: m.Role}
			switch m.Type {
			case "node":
				rel.NodeMembers = append(rel.NodeMembers, member)
			case "way":
				rel.WayMembers = append(rel.WayMembers, member)
			case "relation":
				rel.RelMembers = append(rel.RelMembers, member)
			}
		}
		if _, ok := t.Relations[r.ID]; !ok {
			t.RelationOrder = append(t.RelationOrder, r.ID)
		}
		t.Relations[r.ID] = rel
	}

	return t
}
