package models

import (
	"testing"
	"time"
)

func TestOutboxMessage_MarkFailed(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := NewEmailMessage("a@b.it", "subject", "<p>body</p>", "")
	msg.MaxRetries = 3

	msg.MarkFailed(now, "dial tcp: timeout", time.Second)
	if msg.Status != OutboxFailed || msg.RetryCount != 1 {
		t.Fatalf("expected failed/1, got %s/%d", msg.Status, msg.RetryCount)
	}
	if !msg.NextRetryAt.Equal(now.Add(time.Second)) {
		t.Errorf("expected first retry after 1s, got %v", msg.NextRetryAt)
	}

	msg.MarkFailed(now, "dial tcp: timeout", time.Second)
	if !msg.NextRetryAt.Equal(now.Add(2 * time.Second)) {
		t.Errorf("expected second retry after 2s, got %v", msg.NextRetryAt)
	}

	msg.MarkFailed(now, "dial tcp: timeout", time.Second)
	if msg.Status != OutboxDead {
		t.Fatalf("expected dead after max retries, got %s", msg.Status)
	}
	if msg.NextRetryAt != nil {
		t.Error("dead message must not be rescheduled")
	}
}

func TestOutboxMessage_MarkSent(t *testing.T) {
	now := time.Now()
	msg := NewEmailMessage("a@b.it", "subject", "body", "")
	msg.MarkFailed(now, "boom", time.Second)
	msg.MarkSent(now)

	if msg.Status != OutboxSent || msg.ProcessedAt == nil || msg.NextRetryAt != nil || msg.LastError != "" {
		t.Errorf("unexpected sent state: %+v", msg)
	}
}

func TestExpenseCategory_Valid(t *testing.T) {
	for _, c := range ExpenseCategories {
		if !c.Valid() {
			t.Errorf("expected %s to be valid", c)
		}
	}
	if ExpenseCategory("Giardinaggio").Valid() {
		t.Error("expected unknown category to be invalid")
	}
}
