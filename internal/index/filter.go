package index

// HasInterestingTags reports whether at least one tag key falls outside the
// exclusion set. An element with no tags, or whose tags are all excluded, is
// not interesting. The verdict depends only on the inputs, so filtering the
// same map twice always agrees.
func HasInterestingTags(tags map[string]string, excluded map[string]struct{}) bool {
	for k := range tags {
		if _, ok := excluded[k]; !ok {
			return true
		}
	}
	return false
}
