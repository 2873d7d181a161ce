package proj

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// SRID constants for the supported projections
const (
	SRID4326 = 4326 // WGS84 (lat/lon)
	SRID3857 = 3857 // Web Mercator
)

// Transformer converts coordinates between a source and target projection.
type Transformer struct {
	SourceSRID int
	TargetSRID int
}

// NewTransformer creates a transformer for a source/target SRID pair.
func NewTransformer(sourceSRID, targetSRID int) (*Transformer, error) {
	if !supported(sourceSRID) {
		return nil, fmt.Errorf("unsupported source SRID: %d (supported: 4326, 3857)", sourceSRID)
	}
	if !supported(targetSRID) {
		return nil, fmt.Errorf("unsupported target SRID: %d (supported: 4326, 3857)", targetSRID)
	}
	return &Transformer{
		SourceSRID: sourceSRID,
		TargetSRID: targetSRID,
	}, nil
}

func supported(srid int) bool {
	return srid == SRID4326 || srid == SRID3857
}

// Transform converts a coordinate from the source to the target projection.
func (t *Transformer) Transform(x, y float64) (float64, float64) {
	switch {
	case t.SourceSRID == t.TargetSRID:
		return x, y
	case t.SourceSRID == SRID4326 && t.TargetSRID == SRID3857:
		return lonLatToWebMercator(x, y)
	case t.SourceSRID == SRID3857 && t.TargetSRID == SRID4326:
		return webMercatorToLonLat(x, y)
	}
	return x, y
}

// TransformPoint converts an orb point from the source to the target projection.
func (t *Transformer) TransformPoint(p orb.Point) orb.Point {
	x, y := t.Transform(p.X(), p.Y())
	return orb.Point{x, y}
}

// Inverse returns a transformer for the opposite direction.
func (t *Transformer) Inverse() *Transformer {
	return &Transformer{
		SourceSRID: t.TargetSRID,
		TargetSRID: t.SourceSRID,
	}
}

// NeedsTransform returns true if transformation is required.
func (t *Transformer) NeedsTransform() bool {
	return t.SourceSRID != t.TargetSRID
}

// Web Mercator constants
const (
	// Semi-major axis of WGS84 ellipsoid in meters
	earthRadius = 6378137.0
	// Maximum extent of Web Mercator
	maxExtent = 20037508.342789244
)

// lonLatToWebMercator converts WGS84 (lon, lat) to Web Mercator (x, y).
func lonLatToWebMercator(lon, lat float64) (x, y float64) {
	// Clamp latitude to avoid infinity at the poles
	if lat > 85.06 {
		lat = 85.06
	} else if lat < -85.06 {
		lat = -85.06
	}

	x = lon * maxExtent / 180.0

	// y = R * ln(tan(π/4 + φ/2))
	latRad := lat * math.Pi / 180.0
	y = math.Log(math.Tan(math.Pi/4.0+latRad/2.0)) * earthRadius

	return x, y
}

// webMercatorToLonLat converts Web Mercator (x, y) back to WGS84 (lon, lat).
func webMercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = x / maxExtent * 180.0
	lat = (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180.0 / math.Pi
	return lon, lat
}

// ParseSRID parses a projection string to SRID.
// Accepts: "4326", "3857", "EPSG:4326", "EPSG:3857".
func ParseSRID(s string) (int, error) {
	switch s {
	case "4326", "EPSG:4326":
		return SRID4326, nil
	case "3857", "EPSG:3857":
		return SRID3857, nil
	default:
		return 0, fmt.Errorf("unsupported projection: %s (supported: 4326, 3857)", s)
	}
}
