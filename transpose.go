package collectiontools

import (
	"fmt"
	"sort"
	"strings"
)

// Columns transposes a slice of rows into a map of columns. Every row must
// carry exactly the key set of the first row; a row that deviates produces an
// error naming its position. An empty or nil input yields an empty map.
func Columns[K comparable, V any](rows []map[K]V) (map[K][]V, error) {
	cols := make(map[K][]V)
	var keys map[K]struct{}
	for i, row := range rows {
		if keys == nil {
			keys = make(map[K]struct{}, len(row))
			for k := range row {
				keys[k] = struct{}{}
			}
		} else if !sameKeys(keys, row) {
			return nil, fmt.Errorf("inconsistent keys at position %d: expected %s, got %s",
				i, formatKeys(keys), formatKeys(row))
		}
		for k, v := range row {
			cols[k] = append(cols[k], v)
		}
	}
	return cols, nil
}

// Rows transposes a map of columns into a slice of rows. All columns must
// have the same length; columns of differing lengths produce an error listing
// the sizes. An empty or nil input yields an empty slice.
func Rows[K comparable, V any](cols map[K][]V) ([]map[K]V, error) {
	size := -1
	for _, col := range cols {
		if size == -1 {
			size = len(col)
		} else if len(col) != size {
			return nil, fmt.Errorf("inconsistent sizes: %s", formatSizes(cols))
		}
	}
	if size <= 0 {
		return []map[K]V{}, nil
	}
	rows := make([]map[K]V, size)
	for i := range rows {
		row := make(map[K]V, len(cols))
		for k, col := range cols {
			row[k] = col[i]
		}
		rows[i] = row
	}
	return rows, nil
}

func sameKeys[K comparable, V any](keys map[K]struct{}, row map[K]V) bool {
	if len(keys) != len(row) {
		return false
	}
	for k := range row {
		if _, ok := keys[k]; !ok {
			return false
		}
	}
	return true
}

// formatKeys renders a key set deterministically by sorting the printed form
// of each key.
func formatKeys[K comparable, V any](m map[K]V) string {
	parts := make([]string, 0, len(m))
	for k := range m {
		parts = append(parts, fmt.Sprint(k))
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, " ") + "]"
}

func formatSizes[K comparable, V any](cols map[K][]V) string {
	parts := make([]string, 0, len(cols))
	for k, col := range cols {
		parts = append(parts, fmt.Sprintf("%v=%d", k, len(col)))
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, " ") + "]"
}
