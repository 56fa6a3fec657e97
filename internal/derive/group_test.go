package derive

import (
	"reflect"
	"testing"
)

type thing struct {
	name     string
	location string
}

func TestGroupByStableOrder(t *testing.T) {
	items := []thing{
		{"wrench", "garage"},
		{"blender", "kitchen"},
		{"hammer", "garage"},
		{"kettle", "kitchen"},
		{"ladder", "garage"},
	}
	g := GroupBy(items, func(it thing) string { return it.location }, "Unspecified Location")

	if !reflect.DeepEqual(g.Keys, []string{"garage", "kitchen"}) {
		t.Fatalf("keys = %v, want first-seen order", g.Keys)
	}
	garage := g.Buckets["garage"]
	if len(garage) != 3 || garage[0].name != "wrench" || garage[1].name != "hammer" || garage[2].name != "ladder" {
		t.Fatalf("garage bucket lost relative order: %v", garage)
	}
}

func TestGroupByFallbackBucket(t *testing.T) {
	items := []thing{
		{"wrench", "garage"},
		{"mystery", ""},
		{"puzzle", "   "},
	}
	g := GroupBy(items, func(it thing) string { return it.location }, "Unspecified Location")

	got := g.Buckets["Unspecified Location"]
	if len(got) != 2 {
		t.Fatalf("expected 2 items in fallback bucket, got %d", len(got))
	}
	if g.Keys[1] != "Unspecified Location" {
		t.Fatalf("fallback bucket should appear at first-seen position, keys=%v", g.Keys)
	}
}

func TestGroupByEmptyInput(t *testing.T) {
	g := GroupBy(nil, func(it thing) string { return it.location }, "Unspecified Location")
	if len(g.Keys) != 0 || len(g.Buckets) != 0 {
		t.Fatalf("empty input must produce no buckets, got %v", g.Keys)
	}
}

// Grouping completeness: the union of buckets is exactly the input.
func TestGroupByCompleteness(t *testing.T) {
	items := []thing{
		{"a", "x"}, {"b", ""}, {"c", "y"}, {"d", "x"}, {"e", "y"}, {"f", "z"},
	}
	g := GroupBy(items, func(it thing) string { return it.location }, "none")
	if g.Len() != len(items) {
		t.Fatalf("bucket union size %d != input size %d", g.Len(), len(items))
	}
	seen := map[string]int{}
	for _, b := range g.Buckets {
		for _, it := range b {
			seen[it.name]++
		}
	}
	for _, it := range items {
		if seen[it.name] != 1 {
			t.Fatalf("item %q appears %d times across buckets", it.name, seen[it.name])
		}
	}
}
