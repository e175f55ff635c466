package services

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"condomanager/internal/logger"
	"condomanager/internal/models"
)

const redacted = "[REDACTED]"

// sensitiveKeys are change keys whose values never reach the audit table.
var sensitiveKeys = []string{"password", "token", "secret"}

// auditService records who changed which condominium, expense, user or
// notification.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. An empty userID marks a call made with the
// service API key. Failures are logged and never reach the caller.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := &models.AuditLog{
		Action:       strings.ToUpper(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encodeChanges(action, changes),
	}
	if userID != "" {
		entry.UserID = &userID
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", entry.Action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// encodeChanges serializes changes with credential-like keys masked.
func encodeChanges(action string, changes map[string]any) string {
	if len(changes) == 0 {
		return ""
	}
	clean := make(map[string]any, len(changes))
	for k, v := range changes {
		if isSensitive(k) {
			v = redacted
		}
		clean[k] = v
	}
	data, err := json.Marshal(clean)
	if err != nil {
		logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
