package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "condomanager/internal/errors"
	"condomanager/internal/pagination"
	"condomanager/internal/services"
)

// CondominiumHandler handles condominium-related requests.
type CondominiumHandler struct {
	condominiumService services.CondominiumServicer
	auditService       services.AuditServicer
}

// NewCondominiumHandler creates a new CondominiumHandler.
func NewCondominiumHandler(condominiumService services.CondominiumServicer, auditService services.AuditServicer) *CondominiumHandler {
	return &CondominiumHandler{condominiumService: condominiumService, auditService: auditService}
}

// CondominiumRequest represents the payload for creating a condominium
type CondominiumRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Address    string `json:"address" binding:"required,max=300"`
	City       string `json:"city" binding:"required,max=100"`
	Province   string `json:"province" binding:"required,province"`
	PostalCode string `json:"postal_code" binding:"required,postal_code"`
}

// UpdateCondominiumRequest represents the payload for updating a condominium.
// Omitted fields keep their value.
type UpdateCondominiumRequest struct {
	Name       string `json:"name" binding:"max=200"`
	Address    string `json:"address" binding:"max=300"`
	City       string `json:"city" binding:"max=100"`
	Province   string `json:"province" binding:"omitempty,province"`
	PostalCode string `json:"postal_code" binding:"omitempty,postal_code"`
}

// AssignManagerRequest represents the payload for assigning a manager
type AssignManagerRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// ListCondominiums returns the condominiums visible to the caller
// @Summary     List condominiums
// @Description Admins see every condominium, managers only those they manage
// @Tags        condominiums
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Condominium] "Paginated condominiums"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /condominiums [get]
func (h *CondominiumHandler) ListCondominiums(c *gin.Context) {
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

	result, err := h.condominiumService.ListCondominiums(p, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCondominium returns one condominium
// @Summary     Get a condominium
// @Tags        condominiums
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Condominium ID"
// @Success     200 {object} models.Condominium "Condominium"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Router      /condominiums/{id} [get]
func (h *CondominiumHandler) GetCondominium(c *gin.Context) {
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

	condo, err := h.condominiumService.GetCondominium(p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"condominium": condo})
}

// CreateCondominium handles condominium creation
// @Summary     Create a condominium
// @Tags        condominiums
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CondominiumRequest true "Condominium details"
// @Success     201 {object} models.Condominium "Condominium created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /condominiums [post]
func (h *CondominiumHandler) CreateCondominium(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CondominiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	condo, err := h.condominiumService.CreateCondominium(services.CondominiumInput(req))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "CREATE_CONDOMINIUM", "condominium", condo.ID, c.ClientIP(),
		map[string]interface{}{"name": condo.Name})

	c.JSON(http.StatusCreated, gin.H{"condominium": condo})
}

// UpdateCondominium handles condominium updates
// @Summary     Update a condominium
// @Tags        condominiums
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Condominium ID"
// @Param       request body UpdateCondominiumRequest true "Fields to change"
// @Success     200 {object} models.Condominium "Updated condominium"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Router      /condominiums/{id} [put]
func (h *CondominiumHandler) UpdateCondominium(c *gin.Context) {
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

	var req UpdateCondominiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	condo, err := h.condominiumService.UpdateCondominium(id, services.CondominiumInput(req))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "UPDATE_CONDOMINIUM", "condominium", id, c.ClientIP(),
		map[string]interface{}{"name": condo.Name, "city": condo.City})

	c.JSON(http.StatusOK, gin.H{"condominium": condo})
}

// DeleteCondominium removes a condominium with its expenses
// @Summary     Delete a condominium
// @Description Delete a condominium together with its expenses, attachments and related notifications
// @Tags        condominiums
// @Security    BearerAuth
// @Param       id path string true "Condominium ID"
// @Success     204 "Condominium deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Router      /condominiums/{id} [delete]
func (h *CondominiumHandler) DeleteCondominium(c *gin.Context) {
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

	if err := h.condominiumService.DeleteCondominium(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "DELETE_CONDOMINIUM", "condominium", id, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// ListManagers returns the managers of a condominium
// @Summary     List condominium managers
// @Tags        condominiums
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Condominium ID"
// @Success     200 {array} models.User "Managers"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Router      /condominiums/{id}/managers [get]
func (h *CondominiumHandler) ListManagers(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	managers, err := h.condominiumService.ListManagers(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"managers": managers})
}

// AssignManager links a manager to a condominium
// @Summary     Assign a manager
// @Tags        condominiums
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Condominium ID"
// @Param       request body AssignManagerRequest true "Manager to assign"
// @Success     204 "Manager assigned"
// @Failure     400 {object} ErrorResponse "Invalid input or user is not a manager"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Condominium or user not found"
// @Router      /condominiums/{id}/managers [post]
func (h *CondominiumHandler) AssignManager(c *gin.Context) {
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

	var req AssignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.condominiumService.AssignManager(id, req.UserID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "ASSIGN_MANAGER", "condominium", id, c.ClientIP(),
		map[string]interface{}{"user_id": req.UserID})

	c.Status(http.StatusNoContent)
}

// RemoveManager unlinks a manager from a condominium
// @Summary     Remove a manager
// @Tags        condominiums
// @Security    BearerAuth
// @Param       id      path string true "Condominium ID"
// @Param       user_id path string true "Manager user ID"
// @Success     204 "Manager removed"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Condominium or user not found"
// @Router      /condominiums/{id}/managers/{user_id} [delete]
func (h *CondominiumHandler) RemoveManager(c *gin.Context) {
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
	userID, err := parsePathID(c, "user_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.condominiumService.RemoveManager(id, userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "REMOVE_MANAGER", "condominium", id, c.ClientIP(),
		map[string]interface{}{"user_id": userID})

	c.Status(http.StatusNoContent)
}

// GetSummary returns the expense summary of a condominium
// @Summary     Condominium expense summary
// @Description Approved totals overall and per category, counts per status and the latest expense date
// @Tags        condominiums
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Condominium ID"
// @Success     200 {object} services.ExpenseSummary "Summary"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Router      /condominiums/{id}/summary [get]
func (h *CondominiumHandler) GetSummary(c *gin.Context) {
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

	summary, err := h.condominiumService.Summarize(p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
