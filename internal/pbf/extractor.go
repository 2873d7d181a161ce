package pbf

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgeom/internal/logger"
	"github.com/wegman-software/osmgeom/internal/osmxml"
)

// ToDocument reads a PBF stream into a fully materialized OSM document, so
// PBF extracts can feed the same converter as XML input. The scanner decodes
// blocks in parallel with the given number of workers.
func ToDocument(ctx context.Context, r io.Reader, workers int) (*osmxml.Document, error) {
	if workers < 1 {
		workers = 1
	}
	scanner := osmpbf.New(ctx, r, workers)
	defer scanner.Close()

	doc := osmxml.NewDocument()

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			doc.Nodes = append(doc.Nodes, osmxml.Node{
				ID:      int64(o.ID),
				Lon:     o.Lon,
				Lat:     o.Lat,
				Version: o.Version,
				Tags:    tagList(o.Tags),
			})
		case *osm.Way:
			refs := make([]osmxml.NodeRef, 0, len(o.Nodes))
			for _, n := range o.Nodes {
				refs = append(refs, osmxml.NodeRef{Ref: int64(n.ID)})
			}
			doc.Ways = append(doc.Ways, osmxml.Way{
				ID:      int64(o.ID),
				Version: o.Version,
				Refs:    refs,
				Tags:    tagList(o.Tags),
			})
		case *osm.Relation:
			members := make([]osmxml.Member, 0, len(o.Members))
			for _, m := range o.Members {
				members = append(members, osmxml.Member{
					Type: string(m.Type),
					Ref:  m.Ref,
					Role: m.Role,
				})
			}
			doc.Relations = append(doc.Relations, osmxml.Relation{
				ID:      int64(o.ID),
				Version: o.Version,
				Members: members,
				Tags:    tagList(o.Tags),
			})
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to scan PBF: %w", err)
	}

	logger.Get().Debug("PBF scan complete",
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("ways", len(doc.Ways)),
		zap.Int("relations", len(doc.Relations)))

	return doc, nil
}

func tagList(tags osm.Tags) []osmxml.Tag {
	if len(tags) == 0 {
		return nil
	}
	list := make([]osmxml.Tag, 0, len(tags))
	for _, t := range tags {
		list = append(list, osmxml.Tag{K: t.Key, V: t.Value})
	}
	return list
}
