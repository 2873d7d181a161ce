package convert

import (
	"io"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgeom/internal/entity"
	"github.com/wegman-software/osmgeom/internal/index"
	"github.com/wegman-software/osmgeom/internal/logger"
	"github.com/wegman-software/osmgeom/internal/osmxml"
)

// Read parses an OSM XML document and converts it to entities.
func (c *Converter) Read(r io.Reader) ([]entity.Entity, error) {
	doc, err := osmxml.Parse(r)
	if err != nil {
		return nil, err
	}
	return c.ReadDocument(doc)
}

// ReadDocument converts an already-parsed document to entities. Relation
// outputs come first, then ways, then leftover nodes, each group in document
// order.
func (c *Converter) ReadDocument(doc *osmxml.Document) ([]entity.Entity, error) {
	tables := c.indexer.Index(doc)
	log := logger.Get()

	var out []entity.Entity

	for _, id := range tables.RelationOrder {
		rel := tables.Relations[id]
		builder, ok := c.builders[rel.Tags["type"]]
		if !ok {
			log.Debug("No builder for relation type, skipping",
				zap.Int64("relation", rel.ID),
				zap.String("type", rel.Tags["type"]))
			continue
		}
		out = append(out, builder(rel, tables)...)
	}

	for _, id := range tables.WayOrder {
		way := tables.Ways[id]
		if !way.Interesting {
			continue
		}
		line, refs := tables.ResolveWay(way)

		ent := entity.Entity{
			ID:      way.ID,
			Kind:    entity.KindWay,
			Version: way.Version,
			Tags:    way.Tags,
		}
		if !c.cfg.NodeSharing {
			ent.NodeRefs = refs
		}
		if index.IsArea(way, c.cfg.TagChecking, c.areaKeys) {
			ent.Geometry = orb.Polygon{orb.Ring(line)}
		} else {
			ent.Geometry = line
		}
		out = append(out, ent)
	}

	for _, id := range tables.NodeOrder {
		node := tables.Nodes[id]
		// A node consumed as a plain way vertex with no tags of its own is
		// not emitted again.
		if node.Used && (!c.cfg.TagChecking || len(node.Tags) == 0) {
			continue
		}
		out = append(out, entity.Entity{
			ID:       node.ID,
			Kind:     entity.KindNode,
			Version:  node.Version,
			Tags:     node.Tags,
			Geometry: node.Point,
		})
	}

	return out, nil
}
