package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "condomanager/internal/errors"
	"condomanager/internal/models"
	"condomanager/internal/pagination"
	"condomanager/internal/services"
	"condomanager/internal/uuid"
)

// NotificationHandler handles notification-related requests.
type NotificationHandler struct {
	notificationService services.NotificationServicer
	auditService        services.AuditServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer, auditService services.AuditServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, auditService: auditService}
}

// CreateNotificationRequest represents the payload for creating a notification
type CreateNotificationRequest struct {
	Title     string                  `json:"title" binding:"required,max=200"`
	Message   string                  `json:"message" binding:"required,max=1000"`
	Type      models.NotificationType `json:"type" binding:"required,notification_type"`
	UserID    string                  `json:"user_id" binding:"required,uuid"`
	ExpenseID *string                 `json:"expense_id" binding:"omitempty,uuid"`
}

// BroadcastRequest represents the payload for notifying every manager of a condominium
type BroadcastRequest struct {
	CondominiumID string                  `json:"condominium_id" binding:"required,uuid"`
	Title         string                  `json:"title" binding:"required,max=200"`
	Message       string                  `json:"message" binding:"required,max=1000"`
	Type          models.NotificationType `json:"type" binding:"required,oneof=payment_due system_notification"`
}

// UnreadCountResponse holds the number of unread notifications
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// ListMyNotifications returns the caller's notifications
// @Summary     List my notifications
// @Description Get the caller's notifications, newest first
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Param       unread    query bool false "Only unread notifications"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /notifications [get]
func (h *NotificationHandler) ListMyNotifications(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	unreadOnly := false
	if v := c.Query("unread"); v != "" {
		unreadOnly, err = strconv.ParseBool(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unread must be true or false"))
			return
		}
	}

	result, err := h.notificationService.ListMine(p, unreadOnly, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UnreadCount returns how many of the caller's notifications are unread
// @Summary     Unread notification count
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UnreadCountResponse "Unread count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.notificationService.UnreadCount(p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UnreadCountResponse{Unread: count})
}

// MarkRead marks one notification as read
// @Summary     Mark a notification as read
// @Description Marking an already read notification returns it unchanged
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     200 {object} models.Notification "Notification"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Not the recipient"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Router      /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	n, err := h.notificationService.MarkRead(p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// MarkAllRead marks every unread notification of the caller as read
// @Summary     Mark all notifications as read
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Number of notifications marked"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	n, err := h.notificationService.MarkAllRead(p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": n})
}

// DeleteNotification removes a notification
// @Summary     Delete a notification
// @Description Recipients may delete their notifications; admins may delete any
// @Tags        notifications
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     204 "Notification deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Router      /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.DeleteNotification(p, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "DELETE_NOTIFICATION", "notification", id, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// CreateNotification sends a notification to a user
// @Summary     Create a notification
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateNotificationRequest true "Notification details"
// @Success     201 {object} models.Notification "Notification created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "User or expense not found"
// @Router      /admin/notifications [post]
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	n, err := h.notificationService.CreateNotification(services.NotificationInput{
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		UserID:    req.UserID,
		ExpenseID: req.ExpenseID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "CREATE_NOTIFICATION", "notification", n.ID, c.ClientIP(),
		map[string]interface{}{"user_id": req.UserID, "type": req.Type})

	c.JSON(http.StatusCreated, gin.H{"notification": n})
}

// ListAllNotifications returns every notification
// @Summary     List all notifications
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       user_id   query string false "Filter by recipient"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Router      /admin/notifications [get]
func (h *NotificationHandler) ListAllNotifications(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	userID := c.Query("user_id")
	if userID != "" && !uuid.IsValid(userID) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid user_id"))
		return
	}

	result, err := h.notificationService.ListAll(page, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Broadcast notifies every manager of a condominium. It is called by other
// services with the service API key, e.g. for payment reminders.
// @Summary     Broadcast to condominium managers
// @Tags        internal
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string           true "Service API key"
// @Param       request   body   BroadcastRequest true "Broadcast details"
// @Success     201 {object} map[string]int "Number of notifications created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Router      /internal/notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	n, err := h.notificationService.Broadcast(req.CondominiumID, req.Title, req.Message, req.Type)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "BROADCAST_NOTIFICATION", "condominium", req.CondominiumID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "recipients": n})

	c.JSON(http.StatusCreated, gin.H{"created": n})
}
