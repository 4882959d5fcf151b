package amqp

import (
	"encoding/json"
	"time"
)

// DraftSyncMessage is a lightweight notification that a draft changed. It
// carries only the ID and version; the worker loads the full snapshot from
// the database.
type DraftSyncMessage struct {
	DraftID   int64     `json:"draft_id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDraftSyncMessage(draftID, version int64) *DraftSyncMessage {
	return &DraftSyncMessage{
		DraftID:   draftID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *DraftSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DraftSyncMessageFromJSON(data []byte) (*DraftSyncMessage, error) {
	var msg DraftSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
