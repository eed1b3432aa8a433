// Package registry maintains the persisted set of known channel names.
// The set is kept sorted and free of duplicates; harvest output is merged
// into it before being written back to the settings file.
package registry

import "sort"

// Merge combines newly harvested channel names into the existing list.
// It returns the deduplicated, lexicographically sorted union and the number
// of net-new entries relative to existing. Neither input needs to be sorted
// or unique; comparison is exact (byte-wise), no case folding.
func Merge(existing, incoming []string) ([]string, int) {
	merged := make([]string, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	sort.Strings(merged)

	// drop adjacent duplicates in place
	out := merged[:0]
	for _, name := range merged {
		if len(out) > 0 && name == out[len(out)-1] {
			continue
		}
		out = append(out, name)
	}

	return out, len(out) - len(existing)
}
