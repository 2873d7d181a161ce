package index

import "testing"

func TestIsArea(t *testing.T) {
	areaKeys := map[string]struct{}{
		"building": {},
		"landuse":  {},
	}

	tests := []struct {
		name        string
		refs        []int64
		tags        map[string]string
		tagChecking bool
		want        bool
	}{
		{"open way", []int64{1, 2, 3}, map[string]string{"building": "yes"}, true, false},
		{"single ref", []int64{1}, nil, false, false},
		{"closed no checking", []int64{1, 2, 3, 1}, nil, false, true},
		{"closed area key", []int64{1, 2, 3, 1}, map[string]string{"building": "yes"}, true, true},
		{"closed no area key", []int64{1, 2, 3, 1}, map[string]string{"highway": "service"}, true, false},
		{"explicit area yes", []int64{1, 2, 3, 1}, map[string]string{"area": "yes", "highway": "pedestrian"}, true, true},
		{"explicit area no wins over key", []int64{1, 2, 3, 1}, map[string]string{"area": "no", "building": "yes"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Way{Refs: tt.refs, Tags: tt.tags}
			if got := IsArea(w, tt.tagChecking, areaKeys); got != tt.want {
				t.Errorf("IsArea() = %v, want %v", got, tt.want)
			}
		})
	}
}
