package derive

import "testing"

func TestMatchesQuery(t *testing.T) {
	cases := []struct {
		query  string
		fields []string
		want   bool
	}{
		{"", []string{"anything"}, true},
		{"oil", []string{"Oil change", "routine"}, true},
		{"OIL", []string{"oil change"}, true},
		{"filter", []string{"Oil change", "routine"}, false},
		{"chan", []string{"Oil change"}, true},
		{"x", nil, false},
	}
	for i, tc := range cases {
		if got := MatchesQuery(tc.query, tc.fields...); got != tc.want {
			t.Fatalf("case %d: MatchesQuery(%q, %v) = %v, want %v", i, tc.query, tc.fields, got, tc.want)
		}
	}
}

func TestMatchesSelector(t *testing.T) {
	if !MatchesSelector(SelectorAll, "groceries") {
		t.Fatal("all sentinel must match everything")
	}
	if !MatchesSelector("", "groceries") {
		t.Fatal("empty selector must match everything")
	}
	if !MatchesSelector("groceries", "groceries") {
		t.Fatal("exact match expected")
	}
	if MatchesSelector("groceries", "hardware") {
		t.Fatal("mismatch should not pass")
	}
}

func TestHasAllTags(t *testing.T) {
	tags := []string{"recipe", "dinner", "quick"}
	if !HasAllTags(tags, []string{"recipe", "quick"}) {
		t.Fatal("both selected tags present, expected match")
	}
	if HasAllTags(tags, []string{"recipe", "vegan"}) {
		t.Fatal("AND semantics: one missing tag must exclude the record")
	}
	if !HasAllTags(tags, nil) {
		t.Fatal("zero selected tags is a no-op filter")
	}
	if HasAllTags(nil, []string{"recipe"}) {
		t.Fatal("untagged record cannot match a tag selection")
	}
}

func TestFilterComposesAND(t *testing.T) {
	type note struct {
		title string
		tags  []string
	}
	notes := []note{
		{"pasta night", []string{"recipe", "dinner"}},
		{"pasta salad", []string{"recipe"}},
		{"plumber number", nil},
	}
	got := Filter(notes,
		func(n note) bool { return MatchesQuery("pasta", n.title) },
		func(n note) bool { return HasAllTags(n.tags, []string{"recipe", "dinner"}) },
	)
	if len(got) != 1 || got[0].title != "pasta night" {
		t.Fatalf("composed filter = %v", got)
	}
}
