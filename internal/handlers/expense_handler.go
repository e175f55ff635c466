package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "condomanager/internal/errors"
	"condomanager/internal/models"
	"condomanager/internal/pagination"
	"condomanager/internal/services"
	"condomanager/internal/storage"
	"condomanager/internal/uuid"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// CreateExpenseRequest represents the payload for creating an expense. It is
// accepted as JSON or as multipart/form-data with an optional "file" part.
type CreateExpenseRequest struct {
	CondominiumID string                 `json:"condominium_id" form:"condominium_id" binding:"required,uuid"`
	Description   string                 `json:"description" form:"description" binding:"required,max=500"`
	Amount        decimal.Decimal        `json:"amount" form:"amount" binding:"required,gt=0"`
	Date          string                 `json:"date" form:"date" binding:"required"`
	Category      models.ExpenseCategory `json:"category" form:"category" binding:"required,expense_category"`
}

// UpdateExpenseRequest represents the payload for updating a pending expense.
// Omitted fields keep their value. Version, or an If-Match header, enables
// the optimistic concurrency check.
type UpdateExpenseRequest struct {
	Description *string                 `json:"description" form:"description" binding:"omitempty,max=500"`
	Amount      *decimal.Decimal        `json:"amount" form:"amount"`
	Date        *string                 `json:"date" form:"date"`
	Category    *models.ExpenseCategory `json:"category" form:"category" binding:"omitempty,expense_category"`
	Version     *int                    `json:"version" form:"version" binding:"omitempty,min=1"`
}

// DecisionRequest represents the optional payload of approve and reject.
type DecisionRequest struct {
	Reason  *string `json:"reason" binding:"omitempty,max=500"`
	Version *int    `json:"version" binding:"omitempty,min=1"`
}

// readUpload returns the optional "file" part of a multipart request. The
// returned closer must be called once the upload has been consumed.
func readUpload(c *gin.Context) (*services.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid file upload")
	}
	if header.Size > storage.MaxFileSize {
		return nil, noop, apperrors.ErrFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, noop, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &services.Upload{
		Reader:      f,
		FileName:    header.Filename,
		ContentType: uploadContentType(header),
	}, func() { _ = f.Close() }, nil
}

func uploadContentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// bindDecision binds an optional JSON body; an empty body is allowed.
func bindDecision(c *gin.Context) (DecisionRequest, error) {
	var req DecisionRequest
	if c.Request.ContentLength == 0 {
		return req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return req, nil
}

// CreateExpense handles expense creation
// @Summary     Create an expense
// @Description Create a pending expense for a condominium the caller can access, optionally with an attachment (max 10 MB)
// @Tags        expenses
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       request body     CreateExpenseRequest true  "Expense details"
// @Param       file    formData file                 false "Attachment"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Failure     413 {object} ErrorResponse "File too large"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	upload, closeUpload, err := readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer closeUpload()

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), p, services.ExpenseDraft{
		CondominiumID: req.CondominiumID,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          date,
		Category:      req.Category,
	}, upload)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"condominium_id": expense.CondominiumID, "amount": expense.Amount.StringFixed(2), "category": expense.Category})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListExpenses returns the expenses visible to the caller
// @Summary     List expenses
// @Description Get a paginated list of expenses, newest first. Managers see expenses of the condominiums they manage and those they created.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Param       condominium_id query string false "Filter by condominium"
// @Param       status         query string false "Filter by status (pending, approved, rejected)"
// @Param       category       query string false "Filter by category"
// @Param       from_date      query string false "Filter by start date (YYYY-MM-DD or RFC3339)"
// @Param       to_date        query string false "Filter by end date (YYYY-MM-DD or RFC3339)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
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

	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.ListExpenses(p, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense returns one expense
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense with attachments"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
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

	expense, err := h.expenseService.GetExpense(p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("ETag", fmt.Sprintf(`"%d"`, expense.Version))
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles expense updates
// @Summary     Update an expense
// @Description Change a pending expense. Only the creator or an admin may update. A new file replaces every previous attachment.
// @Tags        expenses
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       id       path     string               true  "Expense ID"
// @Param       If-Match header   string               false "Expected version"
// @Param       request  body     UpdateExpenseRequest true  "Fields to change"
// @Param       file     formData file                 false "Replacement attachment"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense is not pending or version mismatch"
// @Failure     413 {object} ErrorResponse "File too large"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
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

	var req UpdateExpenseRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	changes := services.ExpenseChanges{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		changes.Date = &date
	}
	if changes.ExpectedVersion, err = expectedVersion(c, req.Version); err != nil {
		respondWithError(c, err)
		return
	}

	upload, closeUpload, err := readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer closeUpload()

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), p, id, changes, upload)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit := map[string]interface{}{"version": expense.Version}
	if req.Amount != nil {
		audit["amount"] = req.Amount.StringFixed(2)
	}
	if upload != nil {
		audit["attachment"] = upload.FileName
	}
	h.auditService.Log(p.UserID, "UPDATE_EXPENSE", "expense", id, c.ClientIP(), audit)

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles expense deletion
// @Summary     Delete an expense
// @Description Delete an expense that is not approved. Only the creator or an admin may delete.
// @Tags        expenses
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense is approved"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
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

	if err := h.expenseService.DeleteExpense(c.Request.Context(), p, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "DELETE_EXPENSE", "expense", id, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// ApproveExpense approves a pending expense
// @Summary     Approve an expense
// @Description Approve a pending expense. The creator is notified and emailed.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id       path   string          true  "Expense ID"
// @Param       If-Match header string          false "Expected version"
// @Param       request  body   DecisionRequest false "Optional expected version"
// @Success     200 {object} models.Expense "Approved expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense is not pending or version mismatch"
// @Router      /expenses/{id}/approve [post]
func (h *ExpenseHandler) ApproveExpense(c *gin.Context) {
	h.decide(c, models.ExpenseStatusApproved)
}

// RejectExpense rejects a pending expense
// @Summary     Reject an expense
// @Description Reject a pending expense with an optional reason. The creator is notified and emailed.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id       path   string          true  "Expense ID"
// @Param       If-Match header string          false "Expected version"
// @Param       request  body   DecisionRequest false "Reason and expected version"
// @Success     200 {object} models.Expense "Rejected expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense is not pending or version mismatch"
// @Router      /expenses/{id}/reject [post]
func (h *ExpenseHandler) RejectExpense(c *gin.Context) {
	h.decide(c, models.ExpenseStatusRejected)
}

func (h *ExpenseHandler) decide(c *gin.Context, target models.ExpenseStatus) {
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

	req, err := bindDecision(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	version, err := expectedVersion(c, req.Version)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var expense *models.Expense
	action := "APPROVE_EXPENSE"
	if target == models.ExpenseStatusApproved {
		expense, err = h.expenseService.ApproveExpense(p, id, version)
	} else {
		action = "REJECT_EXPENSE"
		expense, err = h.expenseService.RejectExpense(p, id, req.Reason, version)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{"status": expense.Status}
	if expense.RejectionReason != nil {
		changes["reason"] = *expense.RejectionReason
	}
	h.auditService.Log(p.UserID, action, "expense", id, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DownloadAttachment streams an attachment of an expense
// @Summary     Download an attachment
// @Tags        expenses
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       id      path string true "Expense ID"
// @Param       file_id path string true "File ID"
// @Success     200 {file} file "Attachment content"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Expense or file not found"
// @Router      /expenses/{id}/attachments/{file_id} [get]
func (h *ExpenseHandler) DownloadAttachment(c *gin.Context) {
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
	fileID, err := parsePathID(c, "file_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	file, content, err := h.expenseService.OpenAttachment(c.Request.Context(), p, id, fileID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer content.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, content, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.FileName),
	})
}

func parseExpenseFilter(c *gin.Context) (services.ExpenseFilter, error) {
	var filter services.ExpenseFilter

	if v := c.Query("condominium_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid condominium_id")
		}
		filter.CondominiumID = v
	}

	if v := c.Query("status"); v != "" {
		status := models.ExpenseStatus(v)
		if !status.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status, must be pending, approved, or rejected")
		}
		filter.Status = &status
	}

	if v := c.Query("category"); v != "" {
		category := models.ExpenseCategory(v)
		if !category.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category")
		}
		filter.Category = &category
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return filter, err
	}
	filter.FromDate = from
	filter.ToDate = to

	return filter, nil
}
