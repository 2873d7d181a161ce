package geombuild

import "github.com/paulmach/orb"

// Concat merges two ordered point sequences into one when they share an
// endpoint. The four endpoint pairings are tested in priority order:
// a.last==b.first, a.first==b.last, a.first==b.first, a.last==b.last. When
// the sequences share a start or an end, the shorter of the two is reversed
// and contributes the dropped duplicate point; on equal lengths a is treated
// as the longer branch. Coordinates are compared exactly, with no tolerance.
//
// On success the merged sequence is freshly allocated and contains the
// shared point once. When no endpoints match, ok is false and both inputs
// are left untouched; callers treat that as "close the current chain and
// start a new one".
func Concat(a, b orb.LineString) (merged orb.LineString, ok bool) {
	if len(a) == 0 {
		return b, true
	}
	if len(b) == 0 {
		return a, true
	}

	switch {
	case a[len(a)-1] == b[0]:
		merged = make(orb.LineString, 0, len(a)+len(b)-1)
		merged = append(merged, a...)
		merged = append(merged, b[1:]...)

	case a[0] == b[len(b)-1]:
		merged = make(orb.LineString, 0, len(a)+len(b)-1)
		merged = append(merged, b...)
		merged = append(merged, a[1:]...)

	case a[0] == b[0]:
		// Shared start point: flip the shorter sequence in front of or
		// behind the longer one.
		if len(b) <= len(a) {
			merged = reversed(b[1:], len(a)+len(b)-1)
			merged = append(merged, a...)
		} else {
			merged = reversed(a[1:], len(a)+len(b)-1)
			merged = append(merged, b...)
		}

	case a[len(a)-1] == b[len(b)-1]:
		// Shared end point: append the shorter sequence reversed, dropping
		// its trailing duplicate.
		if len(b) <= len(a) {
			merged = make(orb.LineString, 0, len(a)+len(b)-1)
			merged = append(merged, a...)
			for i := len(b) - 2; i >= 0; i-- {
				merged = append(merged, b[i])
			}
		} else {
			merged = make(orb.LineString, 0, len(a)+len(b)-1)
			merged = append(merged, b...)
			for i := len(a) - 2; i >= 0; i-- {
				merged = append(merged, a[i])
			}
		}

	default:
		return nil, false
	}

	return merged, true
}

// reversed copies ls back to front into a new sequence with room for cap
// total points.
func reversed(ls orb.LineString, capacity int) orb.LineString {
	out := make(orb.LineString, len(ls), capacity)
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}
