// Package collectiontools provides generic helpers for working with maps and
// map-shaped records.
//
// The helpers fall into four groups:
//
//   - Value transforms: [FilterValues], [MapValues], [MapLeaves]
//   - Accumulation: [AppendValues]
//   - Transposition between row-major and column-major shapes: [Columns], [Rows]
//   - Merging and enumeration: [Union], [Update], [Product]
//
// # Records and columns
//
// Many data sources hand out records one at a time as maps ("rows"), while
// downstream consumers often want one slice per field ("columns"). [Columns]
// and [Rows] convert between the two shapes and validate that the data is
// rectangular:
//
//	rows := []map[string]int{{"a": 1, "b": 2}, {"a": 3, "b": 4}}
//	cols, err := collectiontools.Columns(rows)
//	// cols == map[string][]int{"a": {1, 3}, "b": {2, 4}}
//
// The two functions are inverses of each other for non-empty rectangular
// input.
//
// # Merging
//
// [Union] and [Update] apply a set of assignments and deletions to a map.
// Union copies, Update mutates:
//
//	x := map[string]int{"a": 3, "b": 9}
//	y := collectiontools.Union(x, map[string]int{"c": 7}, "a")
//	// y == map[string]int{"b": 9, "c": 7}, x is unchanged
//
// # Enumeration
//
// [Product] iterates the Cartesian product of named value slices, yielding one
// map per combination in a deterministic order.
package collectiontools
