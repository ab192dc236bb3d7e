package collectiontools

// FilterValues returns a new map containing the entries of x whose value
// satisfies keep. The input map is never modified.
func FilterValues[K comparable, V any](x map[K]V, keep func(V) bool) map[K]V {
	y := make(map[K]V)
	for k, v := range x {
		if keep(v) {
			y[k] = v
		}
	}
	return y
}

// MapValues returns a new map with f applied to every value of x. The value
// type may change; keys are carried over unchanged.
func MapValues[K comparable, V, W any](x map[K]V, f func(V) W) map[K]W {
	y := make(map[K]W, len(x))
	for k, v := range x {
		y[k] = f(v)
	}
	return y
}

// MapLeaves applies f to every leaf value of x, descending into values that
// are themselves map[K]any. Nested maps are rebuilt, so the result shares no
// map structure with the input. Values of other map types count as leaves.
func MapLeaves[K comparable](x map[K]any, f func(any) any) map[K]any {
	y := make(map[K]any, len(x))
	for k, v := range x {
		if nested, ok := v.(map[K]any); ok {
			y[k] = MapLeaves(nested, f)
		} else {
			y[k] = f(v)
		}
	}
	return y
}

// AppendValues appends each value of y onto the slice stored under the same
// key in x, creating slices for keys that are not yet present. It mutates x
// and returns it for chaining; when x is nil a new map is allocated and
// returned instead.
func AppendValues[K comparable, V any](x map[K][]V, y map[K]V) map[K][]V {
	if x == nil {
		x = make(map[K][]V, len(y))
	}
	for k, v := range y {
		x[k] = append(x[k], v)
	}
	return x
}
