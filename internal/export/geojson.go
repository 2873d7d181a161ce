package export

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/wegman-software/osmgeom/internal/entity"
)

// Property names reserved for entity attributes; everything else in a
// feature's properties is treated as an OSM tag.
const (
	propID      = "osm_id"
	propType    = "osm_type"
	propVersion = "osm_version"
)

// ToFeatureCollection converts entities to a GeoJSON feature collection.
// Entity identity and version travel as reserved properties next to the tags.
func ToFeatureCollection(entities []entity.Entity) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range entities {
		f := geojson.NewFeature(e.Geometry)
		f.ID = fmt.Sprintf("%s/%d", e.Kind, e.ID)
		f.Properties[propID] = e.ID
		f.Properties[propType] = string(e.Kind)
		if e.Version != 0 {
			f.Properties[propVersion] = e.Version
		}
		for k, v := range e.Tags {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc
}

// FromFeatureCollection converts GeoJSON features back to entities, the
// inverse of ToFeatureCollection. Features without reserved properties get a
// kind inferred from their geometry and a zero id, so the serializer will
// allocate placeholder ids for them.
func FromFeatureCollection(fc *geojson.FeatureCollection) ([]entity.Entity, error) {
	entities := make([]entity.Entity, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature %d has no geometry", i)
		}

		e := entity.Entity{
			Geometry: f.Geometry,
			Tags:     map[string]string{},
		}

		for k, v := range f.Properties {
			switch k {
			case propID:
				id, err := toInt64(v)
				if err != nil {
					return nil, fmt.Errorf("feature %d: invalid %s: %w", i, propID, err)
				}
				e.ID = id
			case propType:
				if s, ok := v.(string); ok {
					e.Kind = entity.Kind(s)
				}
			case propVersion:
				version, err := toInt64(v)
				if err != nil {
					return nil, fmt.Errorf("feature %d: invalid %s: %w", i, propVersion, err)
				}
				e.Version = int(version)
			default:
				e.Tags[k] = fmt.Sprintf("%v", v)
			}
		}

		if e.Kind == "" {
			e.Kind = kindForGeometry(f.Geometry)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// toInt64 accepts the numeric shapes JSON decoding can produce.
func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("unexpected numeric type %T", v)
}

func kindForGeometry(g orb.Geometry) entity.Kind {
	switch g.(type) {
	case orb.Point:
		return entity.KindNode
	case orb.LineString, orb.Polygon:
		return entity.KindWay
	}
	return entity.KindRelation
}
