package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"condomanager/internal/access"
	apperrors "condomanager/internal/errors"
	"condomanager/internal/models"
	"condomanager/internal/pagination"
)

// notificationService handles notification-related business logic.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// notify inserts a notification using tx. The expense lifecycle calls it
// inside its own transaction.
func notify(tx *gorm.DB, title, message string, notificationType models.NotificationType, userID string, expenseID *string) (*models.Notification, error) {
	n := &models.Notification{
		Title:     title,
		Message:   message,
		Type:      notificationType,
		UserID:    userID,
		ExpenseID: expenseID,
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// CreateNotification creates a notification for an existing user.
func (s *notificationService) CreateNotification(input NotificationInput) (*models.Notification, error) {
	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	if title == "" || message == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title and message are required")
	}
	if !input.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid notification type")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", input.UserID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	if input.ExpenseID != nil {
		if err := s.db.Model(&models.Expense{}).Where("id = ?", *input.ExpenseID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrExpenseNotFound
		}
	}

	n, err := notify(s.db, title, message, input.Type, input.UserID, input.ExpenseID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return n, nil
}

// ListMine returns the notifications of p, newest first.
func (s *notificationService) ListMine(p *access.Principal, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", p.UserID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	return s.list(query, page)
}

// UnreadCount returns how many notifications of p are unread.
func (s *notificationService) UnreadCount(p *access.Principal) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", p.UserID).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// MarkRead sets read_at on a notification of p. Marking an already read
// notification returns it unchanged.
func (s *notificationService) MarkRead(p *access.Principal, id string) (*models.Notification, error) {
	n, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if n.UserID != p.UserID {
		return nil, apperrors.ErrAccessDenied
	}
	if n.IsRead() {
		return n, nil
	}

	now := time.Now()
	if err := s.db.Model(n).Where("read_at IS NULL").Update("read_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.find(id)
}

// MarkAllRead marks every unread notification of p as read and returns how
// many changed.
func (s *notificationService) MarkAllRead(p *access.Principal) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", p.UserID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteNotification removes a notification owned by p. Admins may delete any.
func (s *notificationService) DeleteNotification(p *access.Principal, id string) error {
	n, err := s.find(id)
	if err != nil {
		return err
	}
	if n.UserID != p.UserID && !p.IsAdmin() {
		return apperrors.ErrAccessDenied
	}
	if err := s.db.Delete(n).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListAll returns every notification, optionally for one user, newest first.
func (s *notificationService) ListAll(page pagination.PageRequest, userID string) (*pagination.PageResponse[models.Notification], error) {
	query := s.db.Model(&models.Notification{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	return s.list(query, page)
}

// Broadcast sends the same notification to every manager of a condominium
// and returns how many were created.
func (s *notificationService) Broadcast(condominiumID, title, message string, notificationType models.NotificationType) (int, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "title and message are required")
	}
	if !notificationType.Valid() {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid notification type")
	}

	var count int64
	if err := s.db.Model(&models.Condominium{}).Where("id = ?", condominiumID).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return 0, apperrors.ErrCondominiumNotFound
	}

	var userIDs []string
	if err := s.db.Table("user_condominiums").
		Where("condominium_id = ?", condominiumID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, userID := range userIDs {
			if _, err := notify(tx, title, message, notificationType, userID, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(userIDs), nil
}

func (s *notificationService) list(query *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(notifications, page.Page, page.PageSize, total)
	return &resp, nil
}

func (s *notificationService) find(id string) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &n, nil
}
