// Package store implements the record store behind every module: a
// SQLite-backed document store for real deployments and an in-memory
// store used as a dev backend and test fixture.
package store

import (
	"context"
	"errors"
	"time"

	"lifedash/internal/record"
)

// ErrNotFound is returned for operations against an identifier that does
// not exist. Deleting an already-removed record surfaces this error; it
// is a no-op on stored state, never a crash.
var ErrNotFound = errors.New("record not found")

// Store is the persistence port the service layer talks to. The store
// performs no cascading: removing a parent's children is the caller's
// job. Bulk operations are all-or-nothing; when any item fails, no item
// is changed and a single error is returned.
type Store interface {
	List(ctx context.Context, collection, parentID string) ([]record.Record, error)
	Get(ctx context.Context, collection, id string) (record.Record, error)
	Create(ctx context.Context, collection string, rec record.Record) error
	Patch(ctx context.Context, collection, id string, fields map[string]any, now time.Time) (record.Record, error)
	Delete(ctx context.Context, collection, id string) error
	BulkPatch(ctx context.Context, collection string, ids []string, fields map[string]any, now time.Time) error
	BulkDelete(ctx context.Context, collection string, ids []string) error
	Count(ctx context.Context, collection string) (int64, error)
	Close() error
}
