package collectiontools

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Product iterates the Cartesian product of the named value slices in axes,
// yielding one freshly allocated map per combination. Keys are visited in
// sorted order with the last key varying fastest, so the sequence is
// deterministic. With no axes the product contains a single empty map; with
// any empty axis it contains nothing.
func Product[K cmp.Ordered, V any](axes map[K][]V) iter.Seq[map[K]V] {
	return func(yield func(map[K]V) bool) {
		keys := slices.Sorted(maps.Keys(axes))
		for _, k := range keys {
			if len(axes[k]) == 0 {
				return
			}
		}
		idx := make([]int, len(keys))
		for {
			combo := make(map[K]V, len(keys))
			for i, k := range keys {
				combo[k] = axes[k][idx[i]]
			}
			if !yield(combo) {
				return
			}
			i := len(keys) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(axes[keys[i]]) {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}
