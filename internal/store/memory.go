package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lifedash/internal/record"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the dev
// backend and serves as the fixture store in tests; seed data lives in
// JSON fixture files, not in module code.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string][]record.Record // collection -> records in insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string][]record.Record)}
}

// NewMemoryStoreFromDir loads seed fixtures from dir, one JSON file per
// collection (e.g. vehicles.json holding an array of records). Missing
// or unreadable files are skipped; a fresh store is always returned.
func NewMemoryStoreFromDir(dir string) *MemoryStore {
	s := NewMemoryStore()
	for _, c := range record.All() {
		path := filepath.Join(dir, c.Name+".json")
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var recs []record.Record
		if err := json.Unmarshal(b, &recs); err != nil {
			continue
		}
		s.recs[c.Name] = recs
	}
	return s
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) List(_ context.Context, collection, parentID string) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []record.Record
	for _, r := range s.recs[collection] {
		if parentID != "" && r.ParentID != parentID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(collection, id); i >= 0 {
		return s.recs[collection][i], nil
	}
	return record.Record{}, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, collection string, rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(collection, rec.ID) >= 0 {
		return fmt.Errorf("create %s/%s: duplicate id", collection, rec.ID)
	}
	s.recs[collection] = append(s.recs[collection], rec)
	return nil
}

func (s *MemoryStore) Patch(_ context.Context, collection, id string, fields map[string]any, now time.Time) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patchLocked(collection, id, fields, now)
}

func (s *MemoryStore) patchLocked(collection, id string, fields map[string]any, now time.Time) (record.Record, error) {
	i := s.index(collection, id)
	if i < 0 {
		return record.Record{}, ErrNotFound
	}
	rec := s.recs[collection][i]
	merged, err := record.MergePatch(rec.Data, fields)
	if err != nil {
		return record.Record{}, fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	rec.Data = merged
	rec.UpdatedAt = now
	s.recs[collection][i] = rec
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, id)
	if i < 0 {
		return ErrNotFound
	}
	s.recs[collection] = append(s.recs[collection][:i], s.recs[collection][i+1:]...)
	return nil
}

// BulkPatch computes every merged record before committing any, so a
// failure leaves all items unchanged.
func (s *MemoryStore) BulkPatch(_ context.Context, collection string, ids []string, fields map[string]any, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[int]record.Record, len(ids))
	for _, id := range ids {
		i := s.index(collection, id)
		if i < 0 {
			return fmt.Errorf("bulk patch %s/%s: %w", collection, id, ErrNotFound)
		}
		rec := s.recs[collection][i]
		merged, err := record.MergePatch(rec.Data, fields)
		if err != nil {
			return fmt.Errorf("bulk patch %s/%s: %w", collection, id, err)
		}
		rec.Data = merged
		rec.UpdatedAt = now
		staged[i] = rec
	}
	for i, rec := range staged {
		s.recs[collection][i] = rec
	}
	return nil
}

// BulkDelete validates every id before removing any record. A duplicate
// id fails with ErrNotFound, the same outcome the SQLite transaction
// produces when its second DELETE affects zero rows.
func (s *MemoryStore) BulkDelete(_ context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		i := s.index(collection, id)
		if i < 0 || drop[i] {
			return fmt.Errorf("bulk delete %s/%s: %w", collection, id, ErrNotFound)
		}
		drop[i] = true
	}
	kept := s.recs[collection][:0]
	for i, r := range s.recs[collection] {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	s.recs[collection] = kept
	return nil
}

func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.recs[collection])), nil
}

// index returns the position of id in a collection, or -1. Callers must
// hold the mutex.
func (s *MemoryStore) index(collection, id string) int {
	for i, r := range s.recs[collection] {
		if r.ID == id {
			return i
		}
	}
	return -1
}
