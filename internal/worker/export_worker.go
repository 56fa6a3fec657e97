package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lifedash/internal/amqp"
	"lifedash/internal/record"
	"lifedash/internal/sheets"
	"lifedash/internal/store"
)

// Fields tried, in order, when deriving the human-readable row label.
var labelFields = []string{"name", "title", "description"}

// ExportWorker mirrors the record change feed into a spreadsheet so the
// dashboard's data has an out-of-band backup.
type ExportWorker struct {
	store  store.Store
	writer sheets.ChangeWriter
}

func NewExportWorker(st store.Store, writer sheets.ChangeWriter) *ExportWorker {
	return &ExportWorker{store: st, writer: writer}
}

// HandleChangeMessage processes a single record change message from AMQP.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"collection", msg.Collection,
		"id", msg.ID,
		"op", msg.Op)

	label := ""
	if msg.Op != amqp.OpDeleted {
		rec, err := w.store.Get(ctx, msg.Collection, msg.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// The record was deleted between publish and consume.
			// Export the row without a label rather than requeueing forever.
			slog.WarnContext(ctx, "Changed record no longer exists",
				"collection", msg.Collection,
				"id", msg.ID)
		case err != nil:
			return fmt.Errorf("get record from storage: %w", err)
		default:
			label = recordLabel(rec)
		}
	}

	row := sheets.ChangeRow{
		Timestamp:  msg.Timestamp.UTC().Format(time.RFC3339),
		Collection: msg.Collection,
		RecordID:   msg.ID,
		Op:         msg.Op,
		OwnerID:    msg.OwnerID,
		Label:      label,
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append change row: %w", err)
	}

	slog.InfoContext(ctx, "Exported change row",
		"collection", msg.Collection,
		"id", msg.ID,
		"row_ref", ref)

	return nil
}

func recordLabel(rec record.Record) string {
	for _, field := range labelFields {
		if v := rec.StringField(field); v != "" {
			return v
		}
	}
	return ""
}
