package memory

import (
	"context"
	"fmt"
	"sync"

	"lifedash/internal/sheets"
)

// Store is an in-memory ChangeWriter for local development and tests.
type Store struct {
	mu   sync.Mutex
	rows []sheets.ChangeRow
}

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row sheets.ChangeRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.ChangeRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.ChangeRow(nil), s.rows...)
}
