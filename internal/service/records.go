// Package service orchestrates mutations: identifier and timestamp
// assignment, closed-set validation, caller-driven cascade of child
// records, and best-effort change publishing to the export feed.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/amqp"
	"lifedash/internal/core"
	"lifedash/internal/derive"
	"lifedash/internal/record"
	"lifedash/internal/store"
)

// ErrInvalidInput marks failures caused by the shape of the request,
// as opposed to faults inside the store or the feed.
var ErrInvalidInput = errors.New("invalid input")

// ChangePublisher is the outbound change feed. *amqp.Client satisfies
// it; a nil publisher disables the feed without affecting mutations.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error
}

// RecordService is the one parameterized controller every module shares;
// per-module behavior comes entirely from the collection registry.
type RecordService struct {
	store     store.Store
	publisher ChangePublisher
	now       func() time.Time
}

func NewRecordService(st store.Store, publisher ChangePublisher) *RecordService {
	return &RecordService{
		store:     st,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (s *RecordService) WithClock(now func() time.Time) *RecordService {
	s.now = now
	return s
}

func (s *RecordService) List(ctx context.Context, collection, parentID string) ([]record.Record, error) {
	if _, err := record.Lookup(collection); err != nil {
		return nil, err
	}
	return s.store.List(ctx, collection, parentID)
}

func (s *RecordService) Get(ctx context.Context, collection, id string) (record.Record, error) {
	if _, err := record.Lookup(collection); err != nil {
		return record.Record{}, err
	}
	return s.store.Get(ctx, collection, id)
}

// Create assigns a fresh identifier and timestamps, validates the payload
// against the collection descriptor, and persists the record. The caller
// supplies its identity explicitly; there is no ambient default owner.
func (s *RecordService) Create(ctx context.Context, collection, ownerID, parentID string, payload map[string]any) (record.Record, error) {
	c, err := record.Lookup(collection)
	if err != nil {
		return record.Record{}, err
	}
	if c.Parent != "" && parentID == "" {
		return record.Record{}, fmt.Errorf("create %s: missing parent id: %w", collection, ErrInvalidInput)
	}
	if c.Parent == "" && parentID != "" {
		return record.Record{}, fmt.Errorf("create %s: unexpected parent id on top-level collection: %w", collection, ErrInvalidInput)
	}
	if err := validatePayload(c, payload); err != nil {
		return record.Record{}, err
	}

	now := s.now()
	data, err := record.MergePatch(nil, payload)
	if err != nil {
		return record.Record{}, fmt.Errorf("encode %s payload: %w", collection, err)
	}
	rec := record.Record{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}

	if err := s.store.Create(ctx, collection, rec); err != nil {
		return record.Record{}, err
	}
	s.publish(ctx, collection, rec.ID, amqp.OpCreated, ownerID)
	return rec, nil
}

// Patch merges the supplied fields into an existing record. The
// identifier never changes; the modification timestamp is refreshed.
func (s *RecordService) Patch(ctx context.Context, collection, id string, fields map[string]any) (record.Record, error) {
	c, err := record.Lookup(collection)
	if err != nil {
		return record.Record{}, err
	}
	if err := validatePayload(c, fields); err != nil {
		return record.Record{}, err
	}

	rec, err := s.store.Patch(ctx, collection, id, fields, s.now())
	if err != nil {
		return record.Record{}, err
	}
	s.publish(ctx, collection, id, amqp.OpUpdated, rec.OwnerID)
	return rec, nil
}

// Delete removes a record. For parent entities the service cascades to
// every child collection first; the store itself never cascades.
func (s *RecordService) Delete(ctx context.Context, collection, id string) error {
	c, err := record.Lookup(collection)
	if err != nil {
		return err
	}

	for _, child := range c.Children {
		children, err := s.store.List(ctx, child, id)
		if err != nil {
			return fmt.Errorf("list %s children of %s/%s: %w", child, collection, id, err)
		}
		if len(children) == 0 {
			continue
		}
		ids := make([]string, len(children))
		for i, r := range children {
			ids[i] = r.ID
		}
		if err := s.store.BulkDelete(ctx, child, ids); err != nil {
			return fmt.Errorf("cascade %s children of %s/%s: %w", child, collection, id, err)
		}
		slog.InfoContext(ctx, "Cascaded child records",
			"collection", collection, "id", id, "child", child, "count", len(ids))
	}

	if err := s.store.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.publish(ctx, collection, id, amqp.OpDeleted, "")
	return nil
}

// BulkPatch applies shared field updates to every listed record in one
// atomic batch; failure leaves all of them unchanged.
func (s *RecordService) BulkPatch(ctx context.Context, collection string, ids []string, fields map[string]any) error {
	c, err := record.Lookup(collection)
	if err != nil {
		return err
	}
	if err := validatePayload(c, fields); err != nil {
		return err
	}
	if err := s.store.BulkPatch(ctx, collection, ids, fields, s.now()); err != nil {
		return err
	}
	for _, id := range ids {
		s.publish(ctx, collection, id, amqp.OpUpdated, "")
	}
	return nil
}

// BulkDelete removes every listed record atomically. Bulk deletion is
// only offered for collections without children, so no cascade applies.
func (s *RecordService) BulkDelete(ctx context.Context, collection string, ids []string) error {
	c, err := record.Lookup(collection)
	if err != nil {
		return err
	}
	if c.IsParent() {
		return fmt.Errorf("bulk delete %s: parent collections must be deleted individually: %w", collection, ErrInvalidInput)
	}
	if err := s.store.BulkDelete(ctx, collection, ids); err != nil {
		return err
	}
	for _, id := range ids {
		s.publish(ctx, collection, id, amqp.OpDeleted, "")
	}
	return nil
}

// publish sends a change message when a feed is configured. Failures are
// logged, never surfaced; the mutation already succeeded locally.
func (s *RecordService) publish(ctx context.Context, collection, id, op, ownerID string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangeMessage(collection, id, op, ownerID)
	if err := s.publisher.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"collection", collection, "id", id, "op", op, "error", err)
	}
}

// validatePayload enforces the descriptor's closed sets on any values the
// payload supplies. Absent fields pass; unknown values do not.
func validatePayload(c record.Collection, payload map[string]any) error {
	if c.StatusField != "" {
		if v, ok := payload[c.StatusField]; ok {
			status, isString := v.(string)
			if !isString || !core.ValidStatus(status, c.Statuses) {
				return fmt.Errorf("%s %q for %s: %w", c.StatusField, v, c.Name, core.ErrUnknownStatus)
			}
		}
	}
	if c.Name == "renewals" {
		if v, ok := payload["cadence"]; ok {
			cadence, isString := v.(string)
			if !isString || !derive.ValidCadence(derive.Cadence(cadence)) {
				return fmt.Errorf("cadence %q for renewals: %w", v, core.ErrUnknownStatus)
			}
		}
	}
	return nil
}
