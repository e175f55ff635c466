// Package access decides which condominiums and expenses a principal may see
// or act on. A Principal is built per request and passed explicitly to every
// service call.
package access

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"condomanager/internal/models"
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID                string
	Email                 string
	Role                  models.Role
	ManagedCondominiumIDs []string
}

// NewPrincipal builds a principal from a user and its managed condominiums.
func NewPrincipal(user *models.User) *Principal {
	p := &Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
	for _, c := range user.ManagedCondominiums {
		p.ManagedCondominiumIDs = append(p.ManagedCondominiumIDs, c.ID)
	}
	return p
}

// IsAdmin reports whether the principal has unrestricted rights.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// Manages reports whether condominiumID is in the principal's managed set.
func (p *Principal) Manages(condominiumID string) bool {
	return p != nil && slices.Contains(p.ManagedCondominiumIDs, condominiumID)
}

// CanAccessCondominium is true for admins and for managers of the condominium.
func (p *Principal) CanAccessCondominium(condominiumID string) bool {
	return p.IsAdmin() || p.Manages(condominiumID)
}

// CanReadExpense is true for admins, managers of the expense's condominium,
// and the expense's creator.
func (p *Principal) CanReadExpense(e *models.Expense) bool {
	if p == nil || e == nil {
		return false
	}
	return p.IsAdmin() || p.Manages(e.CondominiumID) || e.CreatedByID == p.UserID
}

// CanModifyExpense is true for admins and the expense's creator.
func (p *Principal) CanModifyExpense(e *models.Expense) bool {
	if p == nil || e == nil {
		return false
	}
	return p.IsAdmin() || e.CreatedByID == p.UserID
}

// CondominiumScope restricts a condominium query to what the principal may list.
// A principal with no managed condominiums gets an empty result, not an error.
func (p *Principal) CondominiumScope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAdmin() {
			return db
		}
		if p == nil || len(p.ManagedCondominiumIDs) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("condominiums.id IN ?", p.ManagedCondominiumIDs)
	}
}

// ExpenseScope restricts an expense query to what the principal may read.
func (p *Principal) ExpenseScope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case p.IsAdmin():
			return db
		case p == nil:
			return db.Where("1 = 0")
		case len(p.ManagedCondominiumIDs) == 0:
			return db.Where("expenses.created_by_id = ?", p.UserID)
		}
		return db.Where("(expenses.condominium_id IN ? OR expenses.created_by_id = ?)", p.ManagedCondominiumIDs, p.UserID)
	}
}

// ApprovalPolicy holds the configurable approval business rules.
type ApprovalPolicy struct {
	// AllowManagerApproval lets managers approve or reject expenses of
	// condominiums they manage. Admins can always approve.
	AllowManagerApproval bool
	// RequireRejectionReason makes the reason mandatory on reject.
	RequireRejectionReason bool
}

// CanApprove reports whether p may approve or reject e under the policy.
func (pol ApprovalPolicy) CanApprove(p *Principal, e *models.Expense) bool {
	if p.IsAdmin() {
		return true
	}
	return pol.AllowManagerApproval && p.Manages(e.CondominiumID)
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
