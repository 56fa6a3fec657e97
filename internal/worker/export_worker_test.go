package worker

import (
	"context"
	"testing"
	"time"

	"lifedash/internal/amqp"
	"lifedash/internal/record"
	"lifedash/internal/sheets/memory"
	"lifedash/internal/store"
)

func seedStore(t *testing.T) store.Store {
	t.Helper()
	st := store.NewMemoryStore()
	err := st.Create(context.Background(), "vehicles", record.Record{
		ID:      "veh-1",
		OwnerID: "owner-1",
		Data:    record.MustData(map[string]any{"name": "Family SUV"}),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return st
}

func TestHandleChangeMessageExportsRow(t *testing.T) {
	st := seedStore(t)
	sink := memory.New()
	w := NewExportWorker(st, sink)

	msg := &amqp.RecordChangeMessage{
		Collection: "vehicles",
		ID:         "veh-1",
		Op:         amqp.OpCreated,
		OwnerID:    "owner-1",
		Timestamp:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage: %v", err)
	}

	rows := sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Collection != "vehicles" || row.RecordID != "veh-1" || row.Op != "created" {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.Label != "Family SUV" {
		t.Fatalf("Label = %q, want Family SUV", row.Label)
	}
	if row.Timestamp != "2026-03-10T12:00:00Z" {
		t.Fatalf("Timestamp = %q", row.Timestamp)
	}
}

func TestHandleChangeMessageDeleteSkipsLookup(t *testing.T) {
	st := store.NewMemoryStore()
	sink := memory.New()
	w := NewExportWorker(st, sink)

	msg := &amqp.RecordChangeMessage{
		Collection: "notes",
		ID:         "gone",
		Op:         amqp.OpDeleted,
		Timestamp:  time.Now(),
	}
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage: %v", err)
	}
	if rows := sink.Rows(); len(rows) != 1 || rows[0].Label != "" {
		t.Fatalf("expected one unlabeled row, got %+v", rows)
	}
}

func TestHandleChangeMessageToleratesVanishedRecord(t *testing.T) {
	st := store.NewMemoryStore()
	sink := memory.New()
	w := NewExportWorker(st, sink)

	msg := &amqp.RecordChangeMessage{
		Collection: "vehicles",
		ID:         "missing",
		Op:         amqp.OpUpdated,
		Timestamp:  time.Now(),
	}
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("expected vanished record to export without error, got %v", err)
	}
	if rows := sink.Rows(); len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}
