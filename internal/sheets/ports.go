package sheets

import "context"

// ChangeRow is one exported row of the change log: when a record changed,
// what collection and record it was, which operation, and a short label
// pulled from the record payload.
type ChangeRow struct {
	Timestamp  string
	Collection string
	RecordID   string
	Op         string
	OwnerID    string
	Label      string
}

// Ports for outbound adapters.
type (
	// ChangeWriter appends one change-log row to the backup destination.
	ChangeWriter interface {
		Append(ctx context.Context, row ChangeRow) (rowRef string, err error)
	}
)
