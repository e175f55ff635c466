package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory tags what an expense was for.
type ExpenseCategory string

const (
	CategoryMaintenance ExpenseCategory = "Manutenzione"
	CategoryCleaning    ExpenseCategory = "Pulizia"
	CategoryEnergy      ExpenseCategory = "Energia"
	CategoryInsurance   ExpenseCategory = "Assicurazione"
	CategoryOther       ExpenseCategory = "Altro"
)

// ExpenseCategories lists every category in presentation order.
var ExpenseCategories = []ExpenseCategory{
	CategoryMaintenance,
	CategoryCleaning,
	CategoryEnergy,
	CategoryInsurance,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ExpenseStatus is the approval state of an expense.
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusRejected ExpenseStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	}
	return false
}

// Label returns the Italian display name of the status.
func (s ExpenseStatus) Label() string {
	switch s {
	case ExpenseStatusApproved:
		return "Approvata"
	case ExpenseStatusRejected:
		return "Rifiutata"
	}
	return "In attesa"
}

// Expense is a monetary line item tied to a condominium, subject to approval.
// ApprovedByID and ApprovedAt are set together by approve and reject, and are
// both nil while Status is pending.
type Expense struct {
	Base
	Description     string          `gorm:"size:500;not null" json:"description"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date            time.Time       `gorm:"not null;index" json:"date"`
	Category        ExpenseCategory `gorm:"type:varchar(30);not null" json:"category"`
	Status          ExpenseStatus   `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	RejectionReason *string         `gorm:"size:500" json:"rejection_reason,omitempty"`
	CreatedByID     string          `gorm:"type:uuid;not null;index" json:"created_by_id"`
	CreatedBy       *User           `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"created_by,omitempty"`
	ApprovedByID    *string         `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	ApprovedBy      *User           `gorm:"foreignKey:ApprovedByID;constraint:OnDelete:RESTRICT" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	CondominiumID   string          `gorm:"type:uuid;not null;index" json:"condominium_id"`
	Condominium     *Condominium    `gorm:"foreignKey:CondominiumID" json:"condominium,omitempty"`
	Version         int             `gorm:"not null;default:1" json:"version"`
	Attachments     []File          `gorm:"-" json:"attachments"`
}

// IsPending reports whether the expense can still be approved, rejected or edited.
func (e *Expense) IsPending() bool {
	return e.Status == ExpenseStatusPending
}

// Owner returns the attachment owner reference for this expense.
func (e *Expense) Owner() Owner {
	return Owner{Kind: OwnerExpense, ID: e.ID}
}
