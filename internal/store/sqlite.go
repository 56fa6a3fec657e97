package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lifedash/internal/record"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every collection in a single records table keyed by
// (collection, id), with the typed payload as a JSON document column.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const recordColumns = "id, parent_id, owner_id, data, created_at, updated_at"

func scanRecord(row interface{ Scan(...any) error }) (record.Record, error) {
	var rec record.Record
	var data string
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.ParentID, &rec.OwnerID, &data, &createdAt, &updatedAt); err != nil {
		return record.Record{}, err
	}
	rec.Data = json.RawMessage(data)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

// List returns a collection's records in creation order, optionally
// scoped to a parent identifier.
func (s *SQLiteStore) List(ctx context.Context, collection, parentID string) ([]record.Record, error) {
	query := "SELECT " + recordColumns + " FROM records WHERE collection = ?"
	args := []any{collection}
	if parentID != "" {
		query += " AND parent_id = ?"
		args = append(args, parentID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s record: %w", collection, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (record.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE collection = ? AND id = ?",
		collection, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return record.Record{}, ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Create(ctx context.Context, collection string, rec record.Record) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO records (collection, id, parent_id, owner_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		collection, rec.ID, rec.ParentID, rec.OwnerID, string(rec.Data),
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, rec.ID, err)
	}

	slog.InfoContext(ctx, "Record created",
		"collection", collection, "id", rec.ID, "parent_id", rec.ParentID)
	return nil
}

// Patch merges the supplied fields into the stored payload and refreshes
// the modification timestamp. The identifier never changes.
func (s *SQLiteStore) Patch(ctx context.Context, collection, id string, fields map[string]any, now time.Time) (record.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return record.Record{}, fmt.Errorf("begin patch tx: %w", err)
	}
	defer tx.Rollback()

	rec, err := patchInTx(ctx, tx, collection, id, fields, now)
	if err != nil {
		return record.Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return record.Record{}, fmt.Errorf("commit patch: %w", err)
	}
	return rec, nil
}

func patchInTx(ctx context.Context, tx *sql.Tx, collection, id string, fields map[string]any, now time.Time) (record.Record, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE collection = ? AND id = ?",
		collection, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return record.Record{}, ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("load %s/%s: %w", collection, id, err)
	}

	merged, err := record.MergePatch(rec.Data, fields)
	if err != nil {
		return record.Record{}, fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	rec.Data = merged
	rec.UpdatedAt = now

	if _, err := tx.ExecContext(ctx,
		"UPDATE records SET data = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(merged), now.Format(time.RFC3339Nano), collection, id); err != nil {
		return record.Record{}, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s rows affected: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Record deleted", "collection", collection, "id", id)
	return nil
}

// BulkPatch applies the same field updates to every listed record inside
// one transaction; a single missing id rolls the whole batch back.
func (s *SQLiteStore) BulkPatch(ctx context.Context, collection string, ids []string, fields map[string]any, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk patch tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := patchInTx(ctx, tx, collection, id, fields, now); err != nil {
			return fmt.Errorf("bulk patch %s/%s: %w", collection, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk patch: %w", err)
	}
	slog.InfoContext(ctx, "Bulk patch applied", "collection", collection, "count", len(ids))
	return nil
}

// BulkDelete removes every listed record inside one transaction; a
// single missing id rolls the whole batch back.
func (s *SQLiteStore) BulkDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk delete tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM records WHERE collection = ? AND id = ?", collection, id)
		if err != nil {
			return fmt.Errorf("bulk delete %s/%s: %w", collection, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("bulk delete %s/%s rows affected: %w", collection, id, err)
		}
		if n == 0 {
			return fmt.Errorf("bulk delete %s/%s: %w", collection, id, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk delete: %w", err)
	}
	slog.InfoContext(ctx, "Bulk delete applied", "collection", collection, "count", len(ids))
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}
