package record

import (
	"testing"
)

func TestMergePatch(t *testing.T) {
	orig := MustData(map[string]any{"name": "Civic", "status": "active", "year": 2019})

	merged, err := MergePatch(orig, map[string]any{"status": "sold", "year": nil})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	r := Record{Data: merged}
	fields := r.Fields()
	if fields["name"] != "Civic" {
		t.Fatalf("untouched field changed: %v", fields["name"])
	}
	if fields["status"] != "sold" {
		t.Fatalf("patched field not applied: %v", fields["status"])
	}
	if _, exists := fields["year"]; exists {
		t.Fatal("explicit null should delete the field")
	}
}

func TestMergePatchEmptyOriginal(t *testing.T) {
	merged, err := MergePatch(nil, map[string]any{"name": "new"})
	if err != nil {
		t.Fatalf("merge onto empty payload: %v", err)
	}
	if (Record{Data: merged}).StringField("name") != "new" {
		t.Fatal("patch onto empty payload lost fields")
	}
}

func TestDecode(t *testing.T) {
	cost := int64(2500)
	r := Record{Data: MustData(MaintenanceRecord{
		Description: "Oil change",
		ServiceDate: "2025-02-14",
		CostCents:   &cost,
	})}

	mr, err := Decode[MaintenanceRecord](r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mr.Description != "Oil change" || mr.CostCents == nil || *mr.CostCents != 2500 {
		t.Fatalf("decoded payload mismatch: %+v", mr)
	}
}

func TestDecodeAllSkipsMalformed(t *testing.T) {
	recs := []Record{
		{Data: MustData(Vehicle{Name: "Civic", Status: "active"})},
		{Data: []byte(`{"name": 42`)}, // malformed JSON
		{Data: MustData(Vehicle{Name: "Truck", Status: "sold"})},
	}
	got := DecodeAll[Vehicle](recs)
	if len(got) != 2 {
		t.Fatalf("expected 2 decodable payloads, got %d", len(got))
	}
}

func TestLookup(t *testing.T) {
	c, err := Lookup("maintenance_records")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if c.Parent != "vehicles" {
		t.Fatalf("parent = %q, want vehicles", c.Parent)
	}
	if _, err := Lookup("nope"); err == nil {
		t.Fatal("unknown collection must error")
	}
}

func TestRegistryParentLinks(t *testing.T) {
	for _, c := range All() {
		for _, child := range c.Children {
			cc, err := Lookup(child)
			if err != nil {
				t.Fatalf("%s lists unknown child %s", c.Name, child)
			}
			if cc.Parent != c.Name {
				t.Fatalf("%s -> %s parent link is %q", c.Name, child, cc.Parent)
			}
		}
		if c.Parent != "" {
			p, err := Lookup(c.Parent)
			if err != nil {
				t.Fatalf("%s has unknown parent %s", c.Name, c.Parent)
			}
			found := false
			for _, ch := range p.Children {
				if ch == c.Name {
					found = true
				}
			}
			if !found {
				t.Fatalf("parent %s does not list child %s", c.Parent, c.Name)
			}
		}
	}
}
