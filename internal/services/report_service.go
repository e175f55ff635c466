package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"condomanager/internal/access"
	apperrors "condomanager/internal/errors"
	"condomanager/internal/models"
	"condomanager/internal/report"
	"condomanager/internal/storage"
)

const reportTitle = "Report Spese Condominio"

// reportService builds expense reports for a condominium.
type reportService struct {
	db       *gorm.DB
	renderer report.Renderer
	now      func() time.Time
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, renderer report.Renderer) ReportServicer {
	return &reportService{db: db, renderer: renderer, now: time.Now}
}

// GenerateReport renders the expenses of a condominium dated within the
// inclusive window [from, to]. A nil bound leaves that side open.
func (s *reportService) GenerateReport(p *access.Principal, condominiumID string, from, to *time.Time) (*Report, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must not be before start date")
	}

	var condo models.Condominium
	if err := s.db.First(&condo, "id = ?", condominiumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCondominiumNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !p.CanAccessCondominium(condo.ID) {
		return nil, apperrors.ErrAccessDenied
	}

	query := s.db.Preload("CreatedBy").Where("condominium_id = ?", condo.ID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	var expenses []models.Expense
	if err := query.Order("date DESC, created_at DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	doc := buildDocument(&condo, expenses, from, to, s.now())
	content, err := s.renderer.Render(doc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExternalService, err)
	}

	return &Report{
		FileName:    reportFileName(&condo, doc.GeneratedAt),
		ContentType: s.renderer.ContentType(),
		Content:     content,
	}, nil
}

func buildDocument(condo *models.Condominium, expenses []models.Expense, from, to *time.Time, now time.Time) report.Document {
	statuses := []models.ExpenseStatus{models.ExpenseStatusApproved, models.ExpenseStatusPending, models.ExpenseStatusRejected}
	totals := make([]report.StatusTotal, len(statuses))
	index := make(map[models.ExpenseStatus]int, len(statuses))
	for i, st := range statuses {
		totals[i] = report.StatusTotal{Label: st.Label(), Amount: decimal.Zero}
		index[st] = i
	}

	lines := make([]report.Line, 0, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		if j, ok := index[e.Status]; ok {
			totals[j].Amount = totals[j].Amount.Add(e.Amount)
			totals[j].Count++
		}
		createdBy := ""
		if e.CreatedBy != nil {
			createdBy = e.CreatedBy.Email
		}
		lines = append(lines, report.Line{
			Date:        e.Date,
			Description: e.Description,
			Category:    string(e.Category),
			Amount:      e.Amount,
			Status:      e.Status.Label(),
			CreatedBy:   createdBy,
		})
	}

	return report.Document{
		Title: reportTitle,
		Header: report.Header{
			Name:       condo.Name,
			Address:    condo.Address,
			City:       condo.City,
			Province:   condo.Province,
			PostalCode: condo.PostalCode,
		},
		From:        from,
		To:          to,
		Totals:      totals,
		Lines:       lines,
		GeneratedAt: now,
	}
}

func reportFileName(condo *models.Condominium, at time.Time) string {
	name := strings.ToLower(storage.SanitizeName(condo.Name))
	return fmt.Sprintf("report_spese_%s_%s.pdf", name, at.Format("20060102"))
}
