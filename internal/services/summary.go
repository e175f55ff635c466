package services

import (
	"time"

	"github.com/shopspring/decimal"

	"condomanager/internal/models"
)

// Summarize aggregates expenses in a single pass. Totals only count approved
// expenses; categories are reported in models.ExpenseCategories order, with
// zero entries for categories that have no approved expense.
func Summarize(condominiumID string, expenses []models.Expense) *ExpenseSummary {
	summary := &ExpenseSummary{
		CondominiumID: condominiumID,
		TotalApproved: decimal.Zero,
		ByCategory:    make([]CategoryTotal, len(models.ExpenseCategories)),
	}
	index := make(map[models.ExpenseCategory]int, len(models.ExpenseCategories))
	for i, c := range models.ExpenseCategories {
		summary.ByCategory[i] = CategoryTotal{Category: c, Total: decimal.Zero}
		index[c] = i
	}

	var latest time.Time
	for i := range expenses {
		e := &expenses[i]
		if e.Date.After(latest) {
			latest = e.Date
		}
		switch e.Status {
		case models.ExpenseStatusApproved:
			summary.ApprovedCount++
			summary.TotalApproved = summary.TotalApproved.Add(e.Amount)
			if j, ok := index[e.Category]; ok {
				summary.ByCategory[j].Total = summary.ByCategory[j].Total.Add(e.Amount)
				summary.ByCategory[j].Count++
			}
		case models.ExpenseStatusPending:
			summary.PendingCount++
		case models.ExpenseStatusRejected:
			summary.RejectedCount++
		}
	}
	if len(expenses) > 0 {
		summary.LatestExpenseDate = &latest
	}
	return summary
}
