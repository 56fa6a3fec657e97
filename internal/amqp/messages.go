package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried on the feed.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordChangeMessage is the lightweight message published after a
// mutation. It carries only the coordinates of the change; the export
// worker fetches the full record from the store when it needs one.
type RecordChangeMessage struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	OwnerID    string    `json:"owner_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message stamped with now.
func NewRecordChangeMessage(collection, id, op, ownerID string) *RecordChangeMessage {
	return &RecordChangeMessage{
		Collection: collection,
		ID:         id,
		Op:         op,
		OwnerID:    ownerID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
