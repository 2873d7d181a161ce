package convert

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgeom/internal/entity"
	"github.com/wegman-software/osmgeom/internal/logger"
	"github.com/wegman-software/osmgeom/internal/osmxml"
)

// writeState holds the transient bookkeeping of one Write call: the negative
// placeholder id counter and the caches that deduplicate node records. It is
// created per call, never shared, so concurrent writes on one Converter do
// not interfere.
type writeState struct {
	doc    *osmxml.Document
	nextID int64

	// byNodeID maps an already written node id to its record index, so a
	// source node is emitted once no matter how many entities reference it.
	byNodeID map[int64]bool
	// byCoord maps an exact coordinate to the node id written for it, so
	// point records shared by multiple lines collapse to one.
	byCoord map[orb.Point]int64
}

func newWriteState() *writeState {
	return &writeState{
		doc:      osmxml.NewDocument(),
		nextID:   -1,
		byNodeID: make(map[int64]bool),
		byCoord:  make(map[orb.Point]int64),
	}
}

// alloc returns the next negative placeholder id.
func (st *writeState) alloc() int64 {
	id := st.nextID
	st.nextID--
	return id
}

// Write serializes entities back into a topological document. Entities are
// processed in reverse input order so node records land before the ways that
// reference them, matching the order readers expect.
func (c *Converter) Write(entities []entity.Entity) (*osmxml.Document, error) {
	st := newWriteState()
	log := logger.Get()

	for i := len(entities) - 1; i >= 0; i-- {
		e := &entities[i]
		switch g := e.Geometry.(type) {
		case nil:
			log.Warn("Entity has no geometry, skipping", zap.Int64("id", e.ID))
		case orb.Point:
			c.writePoint(st, e, g)
		case orb.LineString:
			c.writeLine(st, e, g, e.Tags)
		case orb.Polygon:
			if len(g) == 0 {
				continue
			}
			// The outer ring round-trips as a closed way marked area=yes.
			// Inner rings cannot be expressed on a single way and are left
			// to relation-level serialization, which this core does not do.
			tags := e.CopyTags()
			tags["area"] = "yes"
			c.writeLine(st, e, orb.LineString(g[0]), tags)
		default:
			log.Warn("No serializer for geometry kind, skipping entity",
				zap.Int64("id", e.ID),
				zap.String("kind", string(e.Kind)),
				zap.String("geometry", g.GeoJSONType()))
		}
	}

	return st.doc, nil
}

// WriteTo serializes entities and writes the document as XML text.
func (c *Converter) WriteTo(w io.Writer, entities []entity.Entity) error {
	doc, err := c.Write(entities)
	if err != nil {
		return err
	}
	if err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write OSM document: %w", err)
	}
	return nil
}

// writePoint emits a node record for a standalone point entity and returns
// its id. A positive-id point already written is not emitted again; updates
// to an existing record are not merged, the first writer wins.
func (c *Converter) writePoint(st *writeState, e *entity.Entity, p orb.Point) int64 {
	if e.ID > 0 && st.byNodeID[e.ID] {
		return e.ID
	}

	id := e.ID
	if id <= 0 {
		id = st.alloc()
	}
	st.emitNode(c.nodeRecord(id, p, e.Version, e.Tags, actionFor(e.State)))
	st.byCoord[p] = id
	return id
}

// writeLine emits the node records for every vertex and a way record
// referencing them.
func (c *Converter) writeLine(st *writeState, e *entity.Entity, line orb.LineString, tags map[string]string) {
	wayID := e.ID
	if wayID <= 0 {
		wayID = st.alloc()
	}

	refs := make([]osmxml.NodeRef, 0, len(line))
	stamped := len(e.NodeRefs) == len(line)
	for i, p := range line {
		var id int64
		switch {
		case stamped && e.NodeRefs[i] > 0:
			id = e.NodeRefs[i]
			if !st.byNodeID[id] {
				st.emitNode(c.nodeRecord(id, p, 0, nil, ""))
				st.byCoord[p] = id
			}
		default:
			var ok bool
			if id, ok = st.byCoord[p]; !ok {
				id = st.alloc()
				st.emitNode(c.nodeRecord(id, p, 0, nil, ""))
				st.byCoord[p] = id
			}
		}
		refs = append(refs, osmxml.NodeRef{Ref: id})
	}

	st.doc.Ways = append(st.doc.Ways, osmxml.Way{
		ID:      wayID,
		Version: e.Version,
		Action:  actionFor(e.State),
		Refs:    refs,
		Tags:    osmxml.TagList(tags),
	})
}

// nodeRecord builds a node element with coordinates reprojected back to the
// source coordinate system.
func (c *Converter) nodeRecord(id int64, p orb.Point, version int, tags map[string]string, action string) osmxml.Node {
	if c.inverse.NeedsTransform() {
		p = c.inverse.TransformPoint(p)
	}
	return osmxml.Node{
		ID:      id,
		Lon:     p.X(),
		Lat:     p.Y(),
		Version: version,
		Action:  action,
		Tags:    osmxml.TagList(tags),
	}
}

func (st *writeState) emitNode(n osmxml.Node) {
	st.doc.Nodes = append(st.doc.Nodes, n)
	st.byNodeID[n.ID] = true
}

// actionFor maps a mutation state to the action attribute. Delete is checked
// before update on purpose: if a dual state ever becomes representable,
// delete wins.
func actionFor(state entity.ChangeState) string {
	switch state {
	case entity.StateDelete:
		return osmxml.ActionDelete
	case entity.StateUpdate:
		return osmxml.ActionModify
	}
	return ""
}
