package amqp

import (
	"encoding/json"
	"time"
)

// Change kinds carried on ledger change messages.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
	ChangePayment = "payment"
	ChangeSettled = "settled"
)

// LedgerChangeMessage is a lightweight notification that an expense changed.
// It carries only the ID and the change kind; the worker fetches the full
// expense from the database before mirroring it.
type LedgerChangeMessage struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(id int64, kind string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		ID:        id,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReminderMessage announces that a scheduled expense is approaching or past
// its due date. Consumers turn these into notifications.
type ReminderMessage struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	DueDate   string    `json:"due_date"`
	Balance   int64     `json:"balance"`
	Overdue   bool      `json:"overdue"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
