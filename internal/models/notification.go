package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationExpenseApproved NotificationType = "expense_approved"
	NotificationExpenseRejected NotificationType = "expense_rejected"
	NotificationPaymentDue      NotificationType = "payment_due"
	NotificationSystem          NotificationType = "system_notification"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationExpenseApproved, NotificationExpenseRejected, NotificationPaymentDue, NotificationSystem:
		return true
	}
	return false
}

// Notification is a message shown in a user's notification list.
type Notification struct {
	Base
	Title     string           `gorm:"size:200;not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ExpenseID *string          `gorm:"type:uuid;index" json:"expense_id,omitempty"`
	Expense   *Expense         `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"-"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
