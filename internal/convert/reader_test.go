package convert

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/wegman-software/osmgeom/internal/config"
	"github.com/wegman-software/osmgeom/internal/entity"
	"github.com/wegman-software/osmgeom/internal/osmxml"
)

func newTestConverter(t *testing.T, cfg *config.Config) *Converter {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func entityByID(entities []entity.Entity, kind entity.Kind, id int64) *entity.Entity {
	for i := range entities {
		if entities[i].Kind == kind && entities[i].ID == id {
			return &entities[i]
		}
	}
	return nil
}

func readerDocument() *osmxml.Document {
	return &osmxml.Document{
		Nodes: []osmxml.Node{
			{ID: 1, Lon: 0, Lat: 0},
			{ID: 2, Lon: 1, Lat: 0},
			{ID: 3, Lon: 1, Lat: 1, Tags: []osmxml.Tag{{K: "highway", V: "crossing"}}},
			{ID: 4, Lon: 0, Lat: 1},
			{ID: 5, Lon: 9, Lat: 9, Tags: []osmxml.Tag{{K: "amenity", V: "bench"}}},
			{ID: 6, Lon: 8, Lat: 8},
		},
		Ways: []osmxml.Way{
			{
				ID:   10,
				Refs: []osmxml.NodeRef{{Ref: 1}, {Ref: 2}, {Ref: 3}},
				Tags: []osmxml.Tag{{K: "highway", V: "residential"}},
			},
			{
				ID:   11,
				Refs: []osmxml.NodeRef{{Ref: 1}, {Ref: 2}, {Ref: 3}, {Ref: 4}, {Ref: 1}},
				Tags: []osmxml.Tag{{K: "building", V: "yes"}},
			},
			{
				ID:   12,
				Refs: []osmxml.NodeRef{{Ref: 1}, {Ref: 2}},
				Tags: []osmxml.Tag{{K: "created_by", V: "editor"}},
			},
		},
	}
}

func TestReadDocumentWayGeometry(t *testing.T) {
	c := newTestConverter(t, config.DefaultConfig())
	entities, err := c.ReadDocument(readerDocument())
	if err != nil {
		t.Fatal(err)
	}

	open := entityByID(entities, entity.KindWay, 10)
	if open == nil {
		t.Fatal("way 10 not converted")
	}
	if _, ok := open.Geometry.(orb.LineString); !ok {
		t.Errorf("open way geometry is %T, want LineString", open.Geometry)
	}

	closed := entityByID(entities, entity.KindWay, 11)
	if closed == nil {
		t.Fatal("way 11 not converted")
	}
	poly, ok := closed.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("closed building geometry is %T, want Polygon", closed.Geometry)
	}
	if len(poly[0]) != 5 {
		t.Errorf("polygon ring has %d points, want 5", len(poly[0]))
	}
}

func TestReadDocumentSkipsUninterestingWays(t *testing.T) {
	c := newTestConverter(t, config.DefaultConfig())
	entities, err := c.ReadDocument(readerDocument())
	if err != nil {
		t.Fatal(err)
	}

	if e := entityByID(entities, entity.KindWay, 12); e != nil {
		t.Error("way 12 carries only excluded tags, should be dropped")
	}
}

func TestReadDocumentNodeSuppression(t *testing.T) {
	c := newTestConverter(t, config.DefaultConfig())
	entities, err := c.ReadDocument(readerDocument())
	if err != nil {
		t.Fatal(err)
	}

	// Plain way vertices disappear into the ways that use them.
	for _, id := range []int64{1, 2, 4} {
		if e := entityByID(entities, entity.KindNode, id); e != nil {
			t.Errorf("untagged vertex node %d should be suppressed", id)
		}
	}
	// A tagged vertex is a feature of its own and survives.
	if e := entityByID(entities, entity.KindNode, 3); e == nil {
		t.Error("tagged vertex node 3 should be emitted")
	}
	// Standalone nodes are always emitted.
	for _, id := range []int64{5, 6} {
		if e := entityByID(entities, entity.KindNode, id); e == nil {
			t.Errorf("standalone node %d should be emitted", id)
		}
	}
}

func TestReadDocumentNodeSuppressionWithoutTagChecking(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TagChecking = false
	c := newTestConverter(t, cfg)
	entities, err := c.ReadDocument(readerDocument())
	if err != nil {
		t.Fatal(err)
	}

	// Without tag checking every used node is suppressed, tags or not.
	if e := entityByID(entities, entity.KindNode, 3); e != nil {
		t.Error("node 3 is used by a way, should be suppressed")
	}
	if e := entityByID(entities, entity.KindNode, 5); e == nil {
		t.Error("unused node 5 should still be emitted")
	}
}

func TestReadDocumentStampsNodeRefs(t *testing.T) {
	cfg := config.DefaultConfig()
	c := newTestConverter(t, cfg)
	entities, err := c.ReadDocument(readerDocument())
	if err != nil {
		t.Fatal(err)
	}

	way := entityByID(entities, entity.KindWay, 10)
	if len(way.NodeRefs) != 3 || way.NodeRefs[0] != 1 || way.NodeRefs[2] != 3 {
		t.Errorf("node refs = %v, want [1 2 3]", way.NodeRefs)
	}

	cfg = config.DefaultConfig()
	cfg.NodeSharing = true
	c = newTestConverter(t, cfg)
	entities, err = c.ReadDocument(readerDocument())
	if err != nil {
		t.Fatal(err)
	}
	way = entityByID(entities, entity.KindWay, 10)
	if way.NodeRefs != nil {
		t.Errorf("node refs should be empty with node sharing, got %v", way.NodeRefs)
	}
}

func TestReadDocumentDanglingRef(t *testing.T) {
	doc := readerDocument()
	doc.Ways[0].Refs = append(doc.Ways[0].Refs, osmxml.NodeRef{Ref: 999})

	c := newTestConverter(t, config.DefaultConfig())
	entities, err := c.ReadDocument(doc)
	if err != nil {
		t.Fatal(err)
	}

	way := entityByID(entities, entity.KindWay, 10)
	line := way.Geometry.(orb.LineString)
	if len(line) != 3 {
		t.Errorf("way 10 resolved %d points, want 3 (dangling ref skipped)", len(line))
	}
}

func TestReadDocumentUnknownRelationType(t *testing.T) {
	doc := readerDocument()
	doc.Relations = []osmxml.Relation{{
		ID:      20,
		Members: []osmxml.Member{{Type: "way", Ref: 10, Role: ""}},
		Tags:    []osmxml.Tag{{K: "type", V: "turn_restriction"}},
	}}

	c := newTestConverter(t, config.DefaultConfig())
	entities, err := c.ReadDocument(doc)
	if err != nil {
		t.Fatal(err)
	}

	if e := entityByID(entities, entity.KindRelation, 20); e != nil {
		t.Error("relation with unregistered type should build no geometry")
	}
	// Its member way still converts on its own.
	if e := entityByID(entities, entity.KindWay, 10); e == nil {
		t.Error("member way should still be emitted individually")
	}
}

func TestReadDocumentRelationOutput(t *testing.T) {
	doc := readerDocument()
	doc.Relations = []osmxml.Relation{{
		ID: 21,
		Members: []osmxml.Member{
			{Type: "way", Ref: 11, Role: "outer"},
		},
		Tags: []osmxml.Tag{{K: "type", V: "multipolygon"}, {K: "landuse", V: "forest"}},
	}}

	c := newTestConverter(t, config.DefaultConfig())
	entities, err := c.ReadDocument(doc)
	if err != nil {
		t.Fatal(err)
	}

	rel := entityByID(entities, entity.KindRelation, 21)
	if rel == nil {
		t.Fatal("multipolygon relation not converted")
	}
	if _, ok := rel.Geometry.(orb.MultiPolygon); !ok {
		t.Errorf("relation geometry is %T, want MultiPolygon", rel.Geometry)
	}
	if rel.Tags["landuse"] != "forest" {
		t.Errorf("relation tags = %v", rel.Tags)
	}
}

func TestReadParsesXML(t *testing.T) {
	const src = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lon="13.4" lat="52.5">
    <tag k="amenity" v="cafe"/>
  </node>
</osm>`

	c := newTestConverter(t, config.DefaultConfig())
	entities, err := c.Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	p, ok := entities[0].Geometry.(orb.Point)
	if !ok {
		t.Fatalf("geometry is %T, want Point", entities[0].Geometry)
	}
	if p.X() != 13.4 || p.Y() != 52.5 {
		t.Errorf("point = %v", p)
	}
}
