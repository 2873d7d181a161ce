package proj

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestTransformIdentity(t *testing.T) {
	tr, err := NewTransformer(SRID4326, SRID4326)
	if err != nil {
		t.Fatal(err)
	}
	if tr.NeedsTransform() {
		t.Error("same SRID pair should need no transform")
	}
	x, y := tr.Transform(13.4, 52.5)
	if x != 13.4 || y != 52.5 {
		t.Errorf("identity transform changed coordinates: %v, %v", x, y)
	}
}

func TestTransformToWebMercator(t *testing.T) {
	tr, err := NewTransformer(SRID4326, SRID3857)
	if err != nil {
		t.Fatal(err)
	}

	// Reference values from PostGIS ST_Transform.
	x, y := tr.Transform(90, 45)
	if math.Abs(x-10018754.17) > 0.1 {
		t.Errorf("x = %f, want ~10018754.17", x)
	}
	if math.Abs(y-5621521.49) > 0.1 {
		t.Errorf("y = %f, want ~5621521.49", y)
	}

	// Origin maps to origin.
	if x, y := tr.Transform(0, 0); x != 0 || math.Abs(y) > 1e-6 {
		t.Errorf("origin transformed to %v, %v", x, y)
	}
}

func TestTransformClampsPolarLatitudes(t *testing.T) {
	tr, _ := NewTransformer(SRID4326, SRID3857)
	_, y := tr.Transform(0, 90)
	if math.IsInf(y, 0) || math.IsNaN(y) {
		t.Errorf("polar latitude produced %v", y)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	forward, _ := NewTransformer(SRID4326, SRID3857)
	inverse := forward.Inverse()

	if inverse.SourceSRID != SRID3857 || inverse.TargetSRID != SRID4326 {
		t.Fatalf("inverse = %+v", inverse)
	}

	points := []orb.Point{
		{13.4, 52.5},
		{-122.33, 47.6},
		{0, 0},
		{179.9, -85.0},
	}
	for _, p := range points {
		got := inverse.TransformPoint(forward.TransformPoint(p))
		if math.Abs(got.X()-p.X()) > 1e-9 || math.Abs(got.Y()-p.Y()) > 1e-9 {
			t.Errorf("round trip of %v = %v", p, got)
		}
	}
}

func TestNewTransformerRejectsUnknownSRID(t *testing.T) {
	if _, err := NewTransformer(2154, SRID4326); err == nil {
		t.Error("expected error for unsupported source SRID")
	}
	if _, err := NewTransformer(SRID4326, 2154); err == nil {
		t.Error("expected error for unsupported target SRID")
	}
}

func TestParseSRID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"4326", SRID4326, false},
		{"EPSG:4326", SRID4326, false},
		{"3857", SRID3857, false},
		{"EPSG:3857", SRID3857, false},
		{"epsg:4326", 0, true},
		{"2154", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSRID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSRID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSRID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
