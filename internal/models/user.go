package models

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager
}

// User represents the user model in the database
type User struct {
	Base
	Email               string        `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password            string        `gorm:"not null" json:"-"`
	FirstName           string        `gorm:"size:100" json:"first_name"`
	LastName            string        `gorm:"size:100" json:"last_name"`
	Role                Role          `gorm:"type:varchar(20);not null;default:manager" json:"role"`
	IsActive            bool          `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string        `gorm:"size:64" json:"-"`
	FailedLoginAttempts int           `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time    `json:"-"`
	LastLoginAt         *time.Time    `json:"last_login_at,omitempty"`
	ManagedCondominiums []Condominium `gorm:"many2many:user_condominiums;constraint:OnDelete:CASCADE" json:"managed_condominiums,omitempty"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
