package index

// IsArea reports whether a way represents an area rather than a linear
// feature. A way can only be an area if its ref sequence is closed (first id
// equals last id). With tag checking enabled an explicit area tag wins, then
// at least one key from the area key set is required; with tag checking
// disabled closure alone decides.
func IsArea(way *Way, tagChecking bool, areaKeys map[string]struct{}) bool {
	if len(way.Refs) < 2 || way.Refs[0] != way.Refs[len(way.Refs)-1] {
		return false
	}
	if !tagChecking {
		return true
	}
	if v, ok := way.Tags["area"]; ok {
		return v == "yes"
	}
	for k := range way.Tags {
		if _, ok := areaKeys[k]; ok {
			return true
		}
	}
	return false
}
