package collectiontools

import "maps"

// Union returns a copy of x with the entries of set applied and the del keys
// removed, in that order. The input map is never modified. A nil x behaves
// like an empty map.
func Union[K comparable, V any](x map[K]V, set map[K]V, del ...K) map[K]V {
	y := make(map[K]V, len(x)+len(set))
	maps.Copy(y, x)
	return Update(y, set, del...)
}

// Update applies the entries of set to x, then removes the del keys, and
// returns x for chaining. Unlike [Union] it mutates x in place; when x is nil
// a new map is allocated and returned instead.
func Update[K comparable, V any](x map[K]V, set map[K]V, del ...K) map[K]V {
	if x == nil {
		x = make(map[K]V, len(set))
	}
	maps.Copy(x, set)
	for _, k := range del {
		delete(x, k)
	}
	return x
}
