// Package record defines the record envelope shared by every collection,
// the collection registry that parameterizes the generic CRUD layer, and
// the typed payloads each module's derived views decode into.
package record

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the envelope persisted for every entity and child record.
// The identifier is assigned at creation and never reassigned; the typed
// payload lives in Data as a JSON document.
type Record struct {
	ID        string          `json:"id"`
	ParentID  string          `json:"parent_id,omitempty"`
	OwnerID   string          `json:"owner_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Data      json.RawMessage `json:"data"`
}

// Decode unmarshals a record's payload into a typed module struct.
func Decode[T any](r Record) (T, error) {
	var v T
	if len(r.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", r.ID, err)
	}
	return v, nil
}

// DecodeAll unmarshals every record's payload, skipping records whose
// payload does not decode (they render without derived fields rather
// than failing the whole view).
func DecodeAll[T any](recs []Record) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		v, err := Decode[T](r)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Fields exposes the payload as a generic map, used by the collection
// handlers for search and selector filtering.
func (r Record) Fields() map[string]any {
	m := map[string]any{}
	if len(r.Data) > 0 {
		_ = json.Unmarshal(r.Data, &m)
	}
	return m
}

// StringField returns a payload field as a string, or "" when absent or
// not a string.
func (r Record) StringField(key string) string {
	if v, ok := r.Fields()[key].(string); ok {
		return v
	}
	return ""
}

// MergePatch applies a shallow JSON merge of patch onto the payload:
// supplied fields overwrite, explicit nulls delete, everything else is
// untouched. The record id is never part of the payload and cannot change.
func MergePatch(data json.RawMessage, patch map[string]any) (json.RawMessage, error) {
	m := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	for k, v := range patch {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal merged payload: %w", err)
	}
	return merged, nil
}

// MustData marshals a payload value for fixtures and tests.
func MustData(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
