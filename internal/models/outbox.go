package models

import "time"

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxSent       OutboxStatus = "sent"
	OutboxFailed     OutboxStatus = "failed"
	OutboxDead       OutboxStatus = "dead"
)

// OutboxKindEmail is the only outbox message kind.
const OutboxKindEmail = "email"

// DefaultOutboxMaxRetries bounds deliveries before a message is marked dead.
const DefaultOutboxMaxRetries = 5

// OutboxMessage is an intent to send an email, written in the same
// transaction as the state change that caused it.
type OutboxMessage struct {
	Base
	Kind        string       `gorm:"size:30;not null" json:"kind"`
	Recipient   string       `gorm:"size:255;not null" json:"recipient"`
	Subject     string       `gorm:"size:300;not null" json:"subject"`
	Body        string       `gorm:"type:text;not null" json:"-"`
	AggregateID string       `gorm:"type:uuid;index" json:"aggregate_id,omitempty"`
	Status      OutboxStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	RetryCount  int          `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries  int          `gorm:"not null;default:5" json:"max_retries"`
	LastError   string       `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time   `gorm:"index" json:"next_retry_at,omitempty"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
}

// TableName pins the table name.
func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// NewEmailMessage builds a pending email message.
func NewEmailMessage(recipient, subject, body, aggregateID string) *OutboxMessage {
	return &OutboxMessage{
		Kind:        OutboxKindEmail,
		Recipient:   recipient,
		Subject:     subject,
		Body:        body,
		AggregateID: aggregateID,
		Status:      OutboxPending,
		MaxRetries:  DefaultOutboxMaxRetries,
	}
}

// MarkSent records a successful delivery.
func (m *OutboxMessage) MarkSent(now time.Time) {
	m.Status = OutboxSent
	m.ProcessedAt = &now
	m.NextRetryAt = nil
	m.LastError = ""
}

// MarkFailed records a failed attempt and schedules the next one with
// exponential backoff. Once RetryCount reaches MaxRetries the message is dead.
func (m *OutboxMessage) MarkFailed(now time.Time, cause string, baseBackoff time.Duration) {
	m.RetryCount++
	m.LastError = cause
	if m.RetryCount >= m.MaxRetries {
		m.Status = OutboxDead
		m.NextRetryAt = nil
		m.ProcessedAt = &now
		return
	}
	m.Status = OutboxFailed
	next := now.Add(baseBackoff * time.Duration(1<<(m.RetryCount-1)))
	m.NextRetryAt = &next
}
