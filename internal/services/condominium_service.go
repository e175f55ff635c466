package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"condomanager/internal/access"
	apperrors "condomanager/internal/errors"
	"condomanager/internal/logger"
	"condomanager/internal/models"
	"condomanager/internal/pagination"
	"condomanager/internal/storage"
)

// condominiumService handles condominium-related business logic.
type condominiumService struct {
	db    *gorm.DB
	files storage.FileStore
}

// NewCondominiumService creates a new CondominiumServicer. files is used to
// remove attachment blobs when a condominium is deleted.
func NewCondominiumService(db *gorm.DB, files storage.FileStore) CondominiumServicer {
	return &condominiumService{db: db, files: files}
}

// ListCondominiums returns the condominiums visible to p, ordered by name.
func (s *condominiumService) ListCondominiums(p *access.Principal, page pagination.PageRequest) (*pagination.PageResponse[models.Condominium], error) {
	page.Defaults()

	query := s.db.Model(&models.Condominium{}).Scopes(p.CondominiumScope())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var condos []models.Condominium
	if err := query.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&condos).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(condos, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetCondominium returns a condominium with its managers if p may access it.
func (s *condominiumService) GetCondominium(p *access.Principal, id string) (*models.Condominium, error) {
	condo, err := s.find(s.db.Preload("Managers"), id)
	if err != nil {
		return nil, err
	}
	if !p.CanAccessCondominium(condo.ID) {
		return nil, apperrors.ErrAccessDenied
	}
	return condo, nil
}

// CreateCondominium creates a condominium.
func (s *condominiumService) CreateCondominium(input CondominiumInput) (*models.Condominium, error) {
	input = normalizeCondominium(input)
	if input.Name == "" || input.Address == "" || input.City == "" || input.Province == "" || input.PostalCode == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, address, city, province and postal code are required")
	}

	condo := &models.Condominium{
		Name:       input.Name,
		Address:    input.Address,
		City:       input.City,
		Province:   input.Province,
		PostalCode: input.PostalCode,
	}
	if err := s.db.Create(condo).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return condo, nil
}

// UpdateCondominium changes the non-empty fields of input.
func (s *condominiumService) UpdateCondominium(id string, input CondominiumInput) (*models.Condominium, error) {
	condo, err := s.find(s.db, id)
	if err != nil {
		return nil, err
	}

	input = normalizeCondominium(input)
	updates := map[string]any{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Address != "" {
		updates["address"] = input.Address
	}
	if input.City != "" {
		updates["city"] = input.City
	}
	if input.Province != "" {
		updates["province"] = input.Province
	}
	if input.PostalCode != "" {
		updates["postal_code"] = input.PostalCode
	}
	if len(updates) == 0 {
		return condo, nil
	}

	if err := s.db.Model(condo).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.find(s.db.Preload("Managers"), id)
}

// DeleteCondominium removes a condominium with its expenses, their
// notifications and attachments, and its manager assignments. Attachment
// blobs are removed after commit.
func (s *condominiumService) DeleteCondominium(ctx context.Context, id string) error {
	condo, err := s.find(s.db, id)
	if err != nil {
		return err
	}

	expenseIDs := s.db.Model(&models.Expense{}).Select("id").Where("condominium_id = ?", id)

	var files []models.File
	if err := s.db.Where("owner_kind = ? AND owner_id IN (?)", models.OwnerExpense, expenseIDs).Find(&files).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&models.Expense{}).Select("id").Where("condominium_id = ?", id)
		if err := tx.Where("expense_id IN (?)", ids).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_kind = ? AND owner_id IN (?)", models.OwnerExpense, ids).Delete(&models.File{}).Error; err != nil {
			return err
		}
		if err := tx.Where("condominium_id = ?", id).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Model(condo).Association("Managers").Clear(); err != nil {
			return err
		}
		return tx.Delete(condo).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	removeBlobs(ctx, s.files, files)
	return nil
}

// AssignManager links a manager to a condominium. Assigning twice is a no-op.
func (s *condominiumService) AssignManager(condominiumID, userID string) error {
	condo, err := s.find(s.db, condominiumID)
	if err != nil {
		return err
	}
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleManager {
		return apperrors.ErrNotAManager
	}

	if err := s.db.Model(condo).Association("Managers").Append(user); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RemoveManager unlinks a manager from a condominium. Expenses the manager
// created there are kept.
func (s *condominiumService) RemoveManager(condominiumID, userID string) error {
	condo, err := s.find(s.db, condominiumID)
	if err != nil {
		return err
	}
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}

	if err := s.db.Model(condo).Association("Managers").Delete(user); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListManagers returns the managers of a condominium.
func (s *condominiumService) ListManagers(condominiumID string) ([]models.User, error) {
	condo, err := s.find(s.db, condominiumID)
	if err != nil {
		return nil, err
	}

	managers := []models.User{}
	if err := s.db.Joins("JOIN user_condominiums ON user_condominiums.user_id = users.id").
		Where("user_condominiums.condominium_id = ?", condo.ID).
		Order("users.last_name ASC, users.first_name ASC").
		Find(&managers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return managers, nil
}

// Summarize aggregates the expenses of a condominium p may access.
func (s *condominiumService) Summarize(p *access.Principal, condominiumID string) (*ExpenseSummary, error) {
	condo, err := s.find(s.db, condominiumID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccessCondominium(condo.ID) {
		return nil, apperrors.ErrAccessDenied
	}

	var expenses []models.Expense
	if err := s.db.Where("condominium_id = ?", condo.ID).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return Summarize(condo.ID, expenses), nil
}

func (s *condominiumService) find(db *gorm.DB, id string) (*models.Condominium, error) {
	var condo models.Condominium
	if err := db.First(&condo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCondominiumNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &condo, nil
}

func (s *condominiumService) findUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func normalizeCondominium(in CondominiumInput) CondominiumInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = cases.Title(language.Italian).String(strings.TrimSpace(in.City))
	in.Province = strings.ToUpper(strings.TrimSpace(in.Province))
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	return in
}

// removeBlobs deletes stored attachment blobs. Failures are only logged.
func removeBlobs(ctx context.Context, files storage.FileStore, rows []models.File) {
	for _, f := range rows {
		if err := files.Delete(ctx, f.StoragePath); err != nil {
			logger.Get().Warnw("failed to delete attachment blob",
				"file_id", f.ID,
				"path", f.StoragePath,
				"error", err,
			)
		}
	}
}
