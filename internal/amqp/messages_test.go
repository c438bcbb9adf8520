package amqp

import (
	"testing"
	"time"
)

func TestLedgerChangeMessageRoundTrip(t *testing.T) {
	msg := NewLedgerChangeMessage(42, ChangeSettled)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 42 || got.Kind != ChangeSettled {
		t.Fatalf("got %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("timestamp not carried")
	}
}

func TestLedgerChangeMessageRejectsGarbage(t *testing.T) {
	if _, err := LedgerChangeMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReminderMessageRoundTrip(t *testing.T) {
	msg := &ReminderMessage{
		ID:        7,
		Title:     "banquet hall",
		DueDate:   "2026-09-01",
		Balance:   15_000_000,
		Overdue:   false,
		Timestamp: time.Now(),
	}
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ReminderMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 7 || got.DueDate != "2026-09-01" || got.Balance != 15_000_000 {
		t.Fatalf("got %+v", got)
	}
}
