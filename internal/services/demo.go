package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const demoUserID = "demo-user"

func demoTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID:          "1",
			Type:        core.Expense,
			Category:    "Food",
			Description: "Grocery shopping",
			Amount:      decimal.RequireFromString("85.50"),
			Date:        core.NewDate(2025, 9, 24),
			CreatedAt:   time.Date(2025, 9, 24, 10, 0, 0, 0, time.UTC),
			UserID:      demoUserID,
		},
		{
			ID:          "2",
			Type:        core.Income,
			Category:    "Salary",
			Description: "Monthly salary",
			Amount:      decimal.RequireFromString("3500.00"),
			Date:        core.NewDate(2025, 9, 23),
			CreatedAt:   time.Date(2025, 9, 23, 9, 0, 0, 0, time.UTC),
			UserID:      demoUserID,
		},
		{
			ID:          "3",
			Type:        core.Expense,
			Category:    "Transport",
			Description: "Gas station",
			Amount:      decimal.RequireFromString("45.00"),
			Date:        core.NewDate(2025, 9, 22),
			CreatedAt:   time.Date(2025, 9, 22, 15, 30, 0, 0, time.UTC),
			UserID:      demoUserID,
		},
	}
}

func demoTrends() []core.TrendSummary {
	d := decimal.RequireFromString
	return core.Summarize(
		Totals{
			core.Income:     d("4250"),
			core.Expense:    d("1550.50"),
			core.Investment: d("500"),
			core.Saving:     d("2699.50"),
		},
		Totals{
			core.Income:     d("3800"),
			core.Expense:    d("1200"),
			core.Investment: d("750"),
			core.Saving:     d("2600"),
		},
	)
}
