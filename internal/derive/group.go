// Package derive implements the derivation engine shared by every module:
// stable grouping, zero-safe aggregation, composable filtering, and
// calendar flags/countdowns. All functions are pure and deterministic;
// anything time-dependent takes the current time as an argument instead
// of reading the wall clock.
package derive

import "strings"

// Groups holds the result of a stable group-by. Keys preserves the order
// in which each key was first seen; Buckets preserves the relative input
// order of the items inside each bucket.
type Groups[T any] struct {
	Keys    []string
	Buckets map[string][]T
}

// GroupBy partitions items by the given key function. Items whose key is
// empty (after trimming) land in the fallback bucket instead of being
// dropped. An empty input yields empty Groups with no fallback bucket.
func GroupBy[T any](items []T, key func(T) string, fallback string) Groups[T] {
	g := Groups[T]{Buckets: make(map[string][]T)}
	for _, it := range items {
		k := strings.TrimSpace(key(it))
		if k == "" {
			k = fallback
		}
		if _, seen := g.Buckets[k]; !seen {
			g.Keys = append(g.Keys, k)
		}
		g.Buckets[k] = append(g.Buckets[k], it)
	}
	return g
}

// Len returns the total number of items across all buckets.
func (g Groups[T]) Len() int {
	n := 0
	for _, b := range g.Buckets {
		n += len(b)
	}
	return n
}
