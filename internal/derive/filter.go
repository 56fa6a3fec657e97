package derive

import "strings"

// SelectorAll is the sentinel selector value that matches every record.
const SelectorAll = "all"

// MatchesQuery reports whether the free-text query is a case-insensitive
// substring of any of the searchable fields. An empty query matches.
func MatchesQuery(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// MatchesSelector reports whether value satisfies a category/type/status
// selector. The SelectorAll sentinel (or an empty selector) matches
// everything; otherwise the match is exact.
func MatchesSelector(selector, value string) bool {
	if selector == "" || selector == SelectorAll {
		return true
	}
	return selector == value
}

// HasAllTags reports whether every selected tag is present on the record.
// Tag filtering is AND across tags; zero selected tags is a no-op that
// retains everything.
func HasAllTags(tags, selected []string) bool {
	for _, want := range selected {
		found := false
		for _, t := range tags {
			if t == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Filter retains the items satisfying every predicate. Predicates compose
// by logical AND.
func Filter[T any](items []T, preds ...func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		keep := true
		for _, p := range preds {
			if !p(it) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}
