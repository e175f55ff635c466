package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"condomanager/internal/models"
	"condomanager/internal/testutil"
)

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := Summarize("c1", nil)

		testutil.AssertDecimal(t, "0.00", s.TotalApproved)
		if s.LatestExpenseDate != nil {
			t.Error("expected no latest date")
		}
		if len(s.ByCategory) != len(models.ExpenseCategories) {
			t.Fatalf("expected %d categories, got %d", len(models.ExpenseCategories), len(s.ByCategory))
		}
		if s.ApprovedCount+s.PendingCount+s.RejectedCount != 0 {
			t.Error("expected zero counts")
		}
	})

	t.Run("only_approved_count_towards_totals", func(t *testing.T) {
		day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		expenses := []models.Expense{
			{Amount: decimal.RequireFromString("150.00"), Category: models.CategoryCleaning, Status: models.ExpenseStatusApproved, Date: day},
			{Amount: decimal.RequireFromString("49.99"), Category: models.CategoryCleaning, Status: models.ExpenseStatusApproved, Date: day.AddDate(0, 0, -3)},
			{Amount: decimal.RequireFromString("1000"), Category: models.CategoryEnergy, Status: models.ExpenseStatusPending, Date: day.AddDate(0, 1, 0)},
			{Amount: decimal.RequireFromString("300"), Category: models.CategoryOther, Status: models.ExpenseStatusRejected, Date: day},
			{Amount: decimal.RequireFromString("0.01"), Category: models.CategoryInsurance, Status: models.ExpenseStatusApproved, Date: day},
		}

		s := Summarize("c1", expenses)

		testutil.AssertDecimal(t, "200.00", s.TotalApproved)
		if s.ApprovedCount != 3 || s.PendingCount != 1 || s.RejectedCount != 1 {
			t.Errorf("unexpected counts: %d approved, %d pending, %d rejected", s.ApprovedCount, s.PendingCount, s.RejectedCount)
		}
		if s.ByCategory[0].Category != models.CategoryMaintenance {
			t.Errorf("expected categories in declaration order, got %s first", s.ByCategory[0].Category)
		}
		cleaning := s.ByCategory[1]
		testutil.AssertDecimal(t, "199.99", cleaning.Total)
		if cleaning.Count != 2 {
			t.Errorf("expected 2 cleaning expenses, got %d", cleaning.Count)
		}
		testutil.AssertDecimal(t, "0", s.ByCategory[2].Total)
		if s.LatestExpenseDate == nil || !s.LatestExpenseDate.Equal(day.AddDate(0, 1, 0)) {
			t.Errorf("expected latest date %v, got %v", day.AddDate(0, 1, 0), s.LatestExpenseDate)
		}
	})
}
