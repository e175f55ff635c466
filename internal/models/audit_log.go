package models

// AuditLog records mutations for accountability. UserID is nil for calls
// made with the service API key.
type AuditLog struct {
	Base
	UserID       *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action       string  `gorm:"not null" json:"action"`
	ResourceType string  `gorm:"not null" json:"resource_type"`
	ResourceID   string  `json:"resource_id"`
	IPAddress    string  `json:"ip_address"`
	Changes      string  `json:"changes,omitempty"`
}
