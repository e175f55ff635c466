package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"condomanager/internal/access"
	apperrors "condomanager/internal/errors"
	"condomanager/internal/logger"
	"condomanager/internal/mail"
	"condomanager/internal/models"
	"condomanager/internal/money"
	"condomanager/internal/outbox"
	"condomanager/internal/pagination"
	"condomanager/internal/storage"
)

const (
	maxDescriptionLength = 500
	maxReasonLength      = 500
)

// expenseService runs the expense lifecycle: pending -> approved | rejected.
type expenseService struct {
	db     *gorm.DB
	files  storage.FileStore
	policy access.ApprovalPolicy
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, files storage.FileStore, policy access.ApprovalPolicy) ExpenseServicer {
	return &expenseService{db: db, files: files, policy: policy}
}

// CreateExpense records a pending expense in a condominium p may access. A
// supplied file is stored before the row is inserted and removed again if
// the insert fails.
func (s *expenseService) CreateExpense(ctx context.Context, p *access.Principal, draft ExpenseDraft, file *Upload) (*models.Expense, error) {
	draft.Description = strings.TrimSpace(draft.Description)
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var condo models.Condominium
	if err := s.db.Select("id").First(&condo, "id = ?", draft.CondominiumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCondominiumNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !p.CanAccessCondominium(condo.ID) {
		return nil, apperrors.ErrAccessDenied
	}

	var stored *models.File
	if file != nil {
		f, err := s.storeUpload(ctx, p, file)
		if err != nil {
			return nil, err
		}
		stored = f
	}

	expense := &models.Expense{
		Description:   draft.Description,
		Amount:        draft.Amount.Round(money.Scale),
		Date:          draft.Date,
		Category:      draft.Category,
		Status:        models.ExpenseStatusPending,
		CreatedByID:   p.UserID,
		CondominiumID: condo.ID,
		Version:       1,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return err
		}
		if stored != nil {
			stored.SetOwner(expense.Owner())
			if err := tx.Create(stored).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if stored != nil {
			removeBlobs(ctx, s.files, []models.File{*stored})
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.load(expense.ID)
}

// GetExpense returns an expense p may read, with its attachments.
func (s *expenseService) GetExpense(p *access.Principal, id string) (*models.Expense, error) {
	expense, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !p.CanReadExpense(expense) {
		return nil, apperrors.ErrAccessDenied
	}
	return expense, nil
}

// ListExpenses returns the expenses visible to p, newest first.
func (s *expenseService) ListExpenses(p *access.Principal, filter ExpenseFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	query := s.db.Model(&models.Expense{}).Scopes(p.ExpenseScope(), filterScope(filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := query.Preload("CreatedBy").Preload("ApprovedBy").Preload("Condominium").
		Order("expenses.date DESC, expenses.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.attachFiles(expenses); err != nil {
		return nil, err
	}

	resp := pagination.NewPageResponse(expenses, page.Page, page.PageSize, total)
	return &resp, nil
}

// UpdateExpense applies changes to a pending expense. A new file replaces
// every previous attachment; the replaced blobs are removed after commit.
func (s *expenseService) UpdateExpense(ctx context.Context, p *access.Principal, id string, changes ExpenseChanges, file *Upload) (*models.Expense, error) {
	expense, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !p.CanModifyExpense(expense) {
		return nil, apperrors.ErrAccessDenied
	}
	if !expense.IsPending() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidStateTransition, "Only pending expenses can be modified")
	}
	if changes.ExpectedVersion != nil && *changes.ExpectedVersion != expense.Version {
		return nil, apperrors.ErrConflict
	}

	updates, err := changeSet(changes)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 && file == nil {
		return expense, nil
	}
	updates["version"] = expense.Version + 1
	updates["updated_at"] = time.Now()

	var stored *models.File
	if file != nil {
		f, err := s.storeUpload(ctx, p, file)
		if err != nil {
			return nil, err
		}
		stored = f
	}

	replaced := expense.Attachments
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Expense{}).
			Where("id = ? AND version = ? AND status = ?", expense.ID, expense.Version, models.ExpenseStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrConflict
		}

		if stored == nil {
			return nil
		}
		if err := tx.Where("owner_kind = ? AND owner_id = ?", models.OwnerExpense, expense.ID).Delete(&models.File{}).Error; err != nil {
			return err
		}
		stored.SetOwner(expense.Owner())
		return tx.Create(stored).Error
	})
	if err != nil {
		if stored != nil {
			removeBlobs(ctx, s.files, []models.File{*stored})
		}
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrConflict
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if stored != nil {
		removeBlobs(ctx, s.files, replaced)
	}
	return s.load(expense.ID)
}

// DeleteExpense removes an expense that is not approved, together with its
// notifications and attachments.
func (s *expenseService) DeleteExpense(ctx context.Context, p *access.Principal, id string) error {
	expense, err := s.load(id)
	if err != nil {
		return err
	}
	if !p.CanModifyExpense(expense) {
		return apperrors.ErrAccessDenied
	}
	if expense.Status == models.ExpenseStatusApproved {
		return apperrors.WithMessage(apperrors.ErrInvalidStateTransition, "Approved expenses cannot be deleted")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_kind = ? AND owner_id = ?", models.OwnerExpense, expense.ID).Delete(&models.File{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND status <> ?", expense.ID, models.ExpenseStatusApproved).Delete(&models.Expense{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrConflict
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	removeBlobs(ctx, s.files, expense.Attachments)
	return nil
}

// ApproveExpense moves a pending expense to approved and notifies its creator.
func (s *expenseService) ApproveExpense(p *access.Principal, id string, expectedVersion *int) (*models.Expense, error) {
	return s.decide(p, id, models.ExpenseStatusApproved, nil, expectedVersion)
}

// RejectExpense moves a pending expense to rejected and notifies its creator.
func (s *expenseService) RejectExpense(p *access.Principal, id string, reason *string, expectedVersion *int) (*models.Expense, error) {
	var trimmed *string
	if reason != nil {
		if r := strings.TrimSpace(*reason); r != "" {
			trimmed = &r
		}
	}
	if trimmed == nil && s.policy.RequireRejectionReason {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "A rejection reason is required")
	}
	if trimmed != nil && utf8.RuneCountInString(*trimmed) > maxReasonLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rejection reason must be at most 500 characters")
	}
	return s.decide(p, id, models.ExpenseStatusRejected, trimmed, expectedVersion)
}

// decide applies an approval decision with a guarded update on id, version
// and pending status. The notification and the outbox email are written in
// the same transaction; the email is sent later by the outbox dispatcher.
func (s *expenseService) decide(p *access.Principal, id string, target models.ExpenseStatus, reason *string, expectedVersion *int) (*models.Expense, error) {
	expense, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanApprove(p, expense) {
		return nil, apperrors.ErrAccessDenied
	}
	if !expense.IsPending() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidStateTransition, "Only pending expenses can be approved or rejected")
	}
	if expectedVersion != nil && *expectedVersion != expense.Version {
		return nil, apperrors.ErrConflict
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Expense{}).
			Where("id = ? AND version = ? AND status = ?", expense.ID, expense.Version, models.ExpenseStatusPending).
			Updates(map[string]any{
				"status":           target,
				"approved_by_id":   p.UserID,
				"approved_at":      now,
				"rejection_reason": reason,
				"version":          expense.Version + 1,
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrConflict
		}

		title, message, notificationType := decisionText(expense, target, reason)
		if _, err := notify(tx, title, message, notificationType, expense.CreatedByID, &expense.ID); err != nil {
			return err
		}
		return s.enqueueDecisionEmail(tx, expense, target, reason)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrConflict
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("expense decided",
		"expense_id", expense.ID,
		"status", target,
		"approver_id", p.UserID,
	)
	return s.load(expense.ID)
}

func (s *expenseService) enqueueDecisionEmail(tx *gorm.DB, expense *models.Expense, target models.ExpenseStatus, reason *string) error {
	if expense.CreatedBy == nil || expense.CreatedBy.Email == "" {
		return nil
	}
	data := mail.ExpenseDecision{
		RecipientName: expense.CreatedBy.FullName(),
		Description:   expense.Description,
		Amount:        expense.Amount,
		Date:          expense.Date,
		Approved:      target == models.ExpenseStatusApproved,
	}
	if expense.Condominium != nil {
		data.Condominium = expense.Condominium.Name
	}
	if reason != nil {
		data.RejectionReason = *reason
	}
	subject, body, err := mail.RenderExpenseDecision(data)
	if err != nil {
		return err
	}
	return outbox.Enqueue(tx, models.NewEmailMessage(expense.CreatedBy.Email, subject, body, expense.ID))
}

// OpenAttachment opens the blob of an attachment of an expense p may read.
// The caller must close the reader.
func (s *expenseService) OpenAttachment(ctx context.Context, p *access.Principal, expenseID, fileID string) (*models.File, io.ReadCloser, error) {
	expense, err := s.GetExpense(p, expenseID)
	if err != nil {
		return nil, nil, err
	}

	var file models.File
	if err := s.db.Where("id = ? AND owner_kind = ? AND owner_id = ?", fileID, models.OwnerExpense, expense.ID).
		First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrFileNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rc, err := s.files.Read(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperrors.ErrFileNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrExternalService, err)
	}
	return &file, rc, nil
}

// load fetches an expense with its creator, approver, condominium and attachments.
func (s *expenseService) load(id string) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.Preload("CreatedBy").Preload("ApprovedBy").Preload("Condominium").
		First(&expense, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	expenses := []models.Expense{expense}
	if err := s.attachFiles(expenses); err != nil {
		return nil, err
	}
	return &expenses[0], nil
}

// attachFiles fills the Attachments of each expense with one query.
func (s *expenseService) attachFiles(expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	ids := make([]string, len(expenses))
	for i := range expenses {
		ids[i] = expenses[i].ID
		expenses[i].Attachments = []models.File{}
	}

	var files []models.File
	if err := s.db.Where("owner_kind = ? AND owner_id IN ?", models.OwnerExpense, ids).
		Order("created_at ASC").
		Find(&files).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byOwner := make(map[string][]models.File, len(expenses))
	for _, f := range files {
		byOwner[f.OwnerID] = append(byOwner[f.OwnerID], f)
	}
	for i := range expenses {
		if fs, ok := byOwner[expenses[i].ID]; ok {
			expenses[i].Attachments = fs
		}
	}
	return nil
}

// storeUpload writes the blob and returns an unsaved File row for it.
func (s *expenseService) storeUpload(ctx context.Context, p *access.Principal, file *Upload) (*models.File, error) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	path, size, err := s.files.Store(ctx, file.Reader, file.FileName, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			return nil, apperrors.ErrFileTooLarge
		}
		return nil, apperrors.Wrap(apperrors.ErrExternalService, err)
	}
	return &models.File{
		FileName:     storage.SanitizeName(file.FileName),
		ContentType:  contentType,
		StoragePath:  path,
		Size:         size,
		UploadedByID: p.UserID,
	}, nil
}

func validateDraft(d ExpenseDraft) error {
	switch {
	case d.Description == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	case utf8.RuneCountInString(d.Description) > maxDescriptionLength:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 500 characters")
	case !money.IsValidAmount(d.Amount):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero with at most two decimals")
	case !d.Category.Valid():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid expense category")
	case d.Date.IsZero():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	case d.CondominiumID == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "condominium is required")
	}
	return nil
}

// changeSet validates changes and returns the column updates.
func changeSet(c ExpenseChanges) (map[string]any, error) {
	updates := map[string]any{}
	if c.Description != nil {
		desc := strings.TrimSpace(*c.Description)
		if desc == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
		}
		if utf8.RuneCountInString(desc) > maxDescriptionLength {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 500 characters")
		}
		updates["description"] = desc
	}
	if c.Amount != nil {
		if !money.IsValidAmount(*c.Amount) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero with at most two decimals")
		}
		updates["amount"] = c.Amount.Round(money.Scale)
	}
	if c.Date != nil {
		if c.Date.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
		}
		updates["date"] = *c.Date
	}
	if c.Category != nil {
		if !c.Category.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid expense category")
		}
		updates["category"] = *c.Category
	}
	return updates, nil
}

func filterScope(f ExpenseFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.CondominiumID != "" {
			db = db.Where("expenses.condominium_id = ?", f.CondominiumID)
		}
		if f.Status != nil {
			db = db.Where("expenses.status = ?", *f.Status)
		}
		if f.Category != nil {
			db = db.Where("expenses.category = ?", *f.Category)
		}
		if f.FromDate != nil {
			db = db.Where("expenses.date >= ?", *f.FromDate)
		}
		if f.ToDate != nil {
			db = db.Where("expenses.date <= ?", *f.ToDate)
		}
		return db
	}
}

func decisionText(e *models.Expense, target models.ExpenseStatus, reason *string) (string, string, models.NotificationType) {
	if target == models.ExpenseStatusApproved {
		return "Spesa approvata",
			fmt.Sprintf("La spesa \"%s\" di %s è stata approvata", e.Description, money.FormatEuro(e.Amount)),
			models.NotificationExpenseApproved
	}
	message := fmt.Sprintf("La spesa \"%s\" di %s è stata rifiutata", e.Description, money.FormatEuro(e.Amount))
	if reason != nil {
		message += ": " + *reason
	}
	return "Spesa rifiutata", message, models.NotificationExpenseRejected
}
