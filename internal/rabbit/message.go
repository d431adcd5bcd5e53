package rabbit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lomoval/ai-calendar/internal/storage"
)

const (
	KindCreated  = "created"
	KindUpdated  = "updated"
	KindRemoved  = "removed"
	KindReminder = "reminder"
)

// Message is the body of every notification on the queue.
type Message struct {
	Kind  string        `json:"kind"`
	Event storage.Event `json:"event"`
	Sent  time.Time     `json:"sent"`
}

func NewMessage(kind string, event storage.Event, sent time.Time) Message {
	return Message{Kind: kind, Event: event, Sent: sent}
}

func (m Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(body []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	if m.Kind == "" {
		return Message{}, fmt.Errorf("failed to parse message: kind is empty")
	}
	return m, nil
}
