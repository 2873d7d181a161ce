package geombuild

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/wegman-software/osmgeom/internal/entity"
	"github.com/wegman-software/osmgeom/internal/index"
)

// BuilderFunc assembles zero or more entities from one relation and the
// indexed document it belongs to.
type BuilderFunc func(rel *index.Relation, tables *index.Tables) []entity.Entity

// DefaultRegistry maps relation type tag values to their builders.
// Relations whose type has no entry produce no geometry; their member ways
// and nodes are still emitted individually by the translator.
func DefaultRegistry() map[string]BuilderFunc {
	return map[string]BuilderFunc{
		"multipolygon": BuildMultiPolygon,
		"boundary":     BuildMultiPolygon,
		"route":        BuildRoute,
		"route_master": BuildRouteSegments,
		"site":         BuildCollection,
	}
}

// innerRole reports whether a member role puts its ring in the inner family.
func innerRole(role string) bool {
	return role == "inner" || role == "enclave"
}

// BuildMultiPolygon stitches the relation's way members into rings, chains
// merged in member order while the role family holds, then groups inner
// rings under the outer ring that contains their centroid. Inner rings not
// contained by any outer ring are dropped.
func BuildMultiPolygon(rel *index.Relation, tables *index.Tables) []entity.Entity {
	var outers, inners []orb.Ring

	flush := func(chain orb.LineString, inner bool) {
		if len(chain) == 0 {
			return
		}
		if inner {
			inners = append(inners, orb.Ring(chain))
		} else {
			outers = append(outers, orb.Ring(chain))
		}
	}

	var chain orb.LineString
	chainInner := false
	started := false

	for _, m := range rel.WayMembers {
		way, ok := tables.Ways[m.Ref]
		if !ok {
			continue
		}
		line, _ := tables.ResolveWay(way)
		if len(line) == 0 {
			continue
		}
		inner := innerRole(m.Role)

		if started && inner == chainInner {
			if merged, ok := Concat(chain, line); ok {
				chain = merged
				continue
			}
		}
		if started {
			flush(chain, chainInner)
		}
		chain = line
		chainInner = inner
		started = true
	}
	if started {
		flush(chain, chainInner)
	}

	polygons := make([]orb.Polygon, 0, len(outers))
	for _, outer := range outers {
		polygon := orb.Polygon{outer}
		for _, inner := range inners {
			centroid, _ := planar.CentroidArea(inner)
			if planar.RingContains(outer, centroid) {
				polygon = append(polygon, inner)
			}
		}
		polygons = append(polygons, polygon)
	}

	return []entity.Entity{{
		ID:       rel.ID,
		Kind:     entity.KindRelation,
		Version:  rel.Version,
		Tags:     rel.Tags,
		Geometry: orb.MultiPolygon(polygons),
	}}
}

// BuildRoute resolves every way member into a line, ignoring roles, and
// wraps the lines as one multi-line entity.
func BuildRoute(rel *index.Relation, tables *index.Tables) []entity.Entity {
	var lines orb.MultiLineString
	for _, m := range rel.WayMembers {
		way, ok := tables.Ways[m.Ref]
		if !ok {
			continue
		}
		line, _ := tables.ResolveWay(way)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}

	return []entity.Entity{{
		ID:       rel.ID,
		Kind:     entity.KindRelation,
		Version:  rel.Version,
		Tags:     rel.Tags,
		Geometry: lines,
	}}
}

// BuildRouteSegments chains way members like the multipolygon builder but
// keeps every flushed chain as its own line entity, tagged with the member
// role and a segment ordinal so multiple outputs from one relation stay
// distinguishable. The final chain is always flushed, even if it is empty.
func BuildRouteSegments(rel *index.Relation, tables *index.Tables) []entity.Entity {
	var out []entity.Entity

	flush := func(chain orb.LineString, role string) {
		tags := make(map[string]string, len(rel.Tags)+2)
		for k, v := range rel.Tags {
			tags[k] = v
		}
		if role != "" {
			tags["role"] = role
		}
		tags["segment"] = strconv.Itoa(len(out))
		out = append(out, entity.Entity{
			ID:       rel.ID,
			Kind:     entity.KindRelation,
			Version:  rel.Version,
			Tags:     tags,
			Geometry: chain,
		})
	}

	var chain orb.LineString
	chainRole := ""
	started := false

	for _, m := range rel.WayMembers {
		way, ok := tables.Ways[m.Ref]
		if !ok {
			continue
		}
		line, _ := tables.ResolveWay(way)
		if len(line) == 0 {
			continue
		}

		if started && m.Role == chainRole {
			if merged, ok := Concat(chain, line); ok {
				chain = merged
				continue
			}
		}
		if started {
			flush(chain, chainRole)
		}
		chain = line
		chainRole = m.Role
		started = true
	}
	flush(chain, chainRole)

	return out
}

// BuildCollection resolves all way members to lines and all node members to
// points, combined into one heterogeneous collection entity.
func BuildCollection(rel *index.Relation, tables *index.Tables) []entity.Entity {
	var geoms orb.Collection
	for _, m := range rel.WayMembers {
		way, ok := tables.Ways[m.Ref]
		if !ok {
			continue
		}
		line, _ := tables.ResolveWay(way)
		if len(line) == 0 {
			continue
		}
		geoms = append(geoms, line)
	}
	for _, m := range rel.NodeMembers {
		node, ok := tables.Nodes[m.Ref]
		if !ok {
			continue
		}
		geoms = append(geoms, node.Point)
	}

	return []entity.Entity{{
		ID:       rel.ID,
		Kind:     entity.KindRelation,
		Version:  rel.Version,
		Tags:     rel.Tags,
		Geometry: geoms,
	}}
}
