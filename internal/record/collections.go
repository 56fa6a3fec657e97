package record

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownCollection marks a lookup for a collection the registry does
// not know about.
var ErrUnknownCollection = errors.New("unknown collection")

// Collection describes one entity type: its parentage, the payload fields
// free-text search covers, and its closed status set (if any). The generic
// CRUD layer is parameterized entirely by this descriptor, so no module
// reimplements fetch/create/update/delete.
type Collection struct {
	Name         string
	Module       string
	Parent       string   // parent collection name, "" for top-level entities
	Children     []string // child collections cascaded on delete
	SearchFields []string
	StatusField  string
	Statuses     []string // closed set; empty when the collection has no status
	TagsField    string   // field holding a string list filtered with AND semantics
}

// IsParent reports whether deleting a record here must cascade children.
func (c Collection) IsParent() bool {
	return len(c.Children) > 0
}

var registry = map[string]Collection{
	// vehicles
	"vehicles": {
		Name: "vehicles", Module: "vehicles",
		Children:     []string{"maintenance_records", "odometer_logs"},
		SearchFields: []string{"name", "make", "model"},
		StatusField:  "status",
		Statuses:     []string{"active", "in_shop", "sold", "retired"},
	},
	"maintenance_records": {
		Name: "maintenance_records", Module: "vehicles", Parent: "vehicles",
		SearchFields: []string{"description", "shop"},
	},
	"odometer_logs": {
		Name: "odometer_logs", Module: "vehicles", Parent: "vehicles",
	},

	// finance
	"accounts": {
		Name: "accounts", Module: "finance",
		Children:     []string{"transactions"},
		SearchFields: []string{"name", "institution"},
	},
	"transactions": {
		Name: "transactions", Module: "finance", Parent: "accounts",
		SearchFields: []string{"description", "category"},
	},

	// household
	"properties": {
		Name: "properties", Module: "household",
		Children:     []string{"renewals", "chores"},
		SearchFields: []string{"name", "address"},
	},
	"renewals": {
		Name: "renewals", Module: "household", Parent: "properties",
		SearchFields: []string{"name", "provider"},
	},
	"chores": {
		Name: "chores", Module: "household", Parent: "properties",
		SearchFields: []string{"name"},
		StatusField:  "status",
		Statuses:     []string{"pending", "done"},
	},

	// inventory
	"inventory_items": {
		Name: "inventory_items", Module: "inventory",
		SearchFields: []string{"name", "category", "location", "notes"},
	},

	// media
	"media_items": {
		Name: "media_items", Module: "media",
		SearchFields: []string{"title", "notes"},
		StatusField:  "status",
		Statuses:     []string{"planned", "watching", "completed", "dropped"},
	},

	// notes
	"notes": {
		Name: "notes", Module: "notes",
		SearchFields: []string{"title", "body"},
		TagsField:    "tags",
	},

	// nutrition
	"meals": {
		Name: "meals", Module: "nutrition",
		Children:    []string{"meal_entries"},
		StatusField: "meal_type",
		Statuses:    []string{"breakfast", "lunch", "dinner", "snack"},
	},
	"meal_entries": {
		Name: "meal_entries", Module: "nutrition", Parent: "meals",
		SearchFields: []string{"food_name"},
	},

	// reading
	"books": {
		Name: "books", Module: "reading",
		Children:     []string{"reading_logs", "highlights"},
		SearchFields: []string{"title", "author"},
		StatusField:  "status",
		Statuses:     []string{"to_read", "reading", "finished", "abandoned"},
	},
	"reading_logs": {
		Name: "reading_logs", Module: "reading", Parent: "books",
	},
	"highlights": {
		Name: "highlights", Module: "reading", Parent: "books",
		SearchFields: []string{"text", "note"},
	},

	// shopping
	"shopping_lists": {
		Name: "shopping_lists", Module: "shopping",
		Children:     []string{"shopping_items"},
		SearchFields: []string{"name"},
	},
	"shopping_items": {
		Name: "shopping_items", Module: "shopping", Parent: "shopping_lists",
		SearchFields: []string{"name", "category"},
	},

	// travel
	"trips": {
		Name: "trips", Module: "travel",
		Children:     []string{"itinerary_items", "journal_entries"},
		SearchFields: []string{"name", "destination"},
		StatusField:  "status",
		Statuses:     []string{"planned", "booked", "in_progress", "completed"},
	},
	"itinerary_items": {
		Name: "itinerary_items", Module: "travel", Parent: "trips",
		SearchFields: []string{"title", "location"},
	},
	"journal_entries": {
		Name: "journal_entries", Module: "travel", Parent: "trips",
		SearchFields: []string{"title", "body"},
	},
}

// Lookup returns the descriptor for a collection name.
func Lookup(name string) (Collection, error) {
	c, ok := registry[name]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return c, nil
}

// All returns every registered collection, sorted by name for stable
// iteration.
func All() []Collection {
	out := make([]Collection, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
