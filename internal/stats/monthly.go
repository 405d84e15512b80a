package stats

import (
	"time" // Month window arithmetic

	"budgetbook/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// MonthlyStat summarizes one calendar month of expense/income activity.
// Transfers move money between assets without changing net worth, so they are
// excluded from every monthly figure.
type MonthlyStat struct {
	Year             int   `json:"year"`             // Calendar year
	Month            int   `json:"month"`            // Calendar month, 1-12
	TotalExpenditure int64 `json:"totalExpenditure"` // Sum of expense costs
	TotalIncome      int64 `json:"totalIncome"`      // Sum of income costs
	Balance          int64 `json:"balance"`          // Income minus expenditure
	TransactionCount int64 `json:"transactionCount"` // Number of expense/income receipts
}

// monthRange returns the half-open [start, end) window of a calendar month
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Monthly computes the expense/income summary for one (owner, year, month)
func Monthly(db *gorm.DB, userID uint, year, month int) (*MonthlyStat, error) {
	start, end := monthRange(year, month)
	var row struct {
		TotalExpenditure int64
		TotalIncome      int64
		TransactionCount int64
	}
	err := db.Model(&domain.Receipt{}).
		Select("COALESCE(SUM(CASE WHEN type = 0 THEN cost ELSE 0 END), 0) AS total_expenditure, "+
			"COALESCE(SUM(CASE WHEN type = 1 THEN cost ELSE 0 END), 0) AS total_income, "+
			"COUNT(id) AS transaction_count").
		Where("user_id = ? AND type IN (0, 1) AND transaction_date >= ? AND transaction_date < ?",
			userID, start, end).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &MonthlyStat{
		Year:             year,
		Month:            month,
		TotalExpenditure: row.TotalExpenditure,
		TotalIncome:      row.TotalIncome,
		Balance:          row.TotalIncome - row.TotalExpenditure,
		TransactionCount: row.TransactionCount,
	}, nil
}

// RecentMonthly returns per-month summaries over the trailing window, newest
// first. Months with no expense/income activity are omitted.
func RecentMonthly(db *gorm.DB, userID uint, months int) ([]MonthlyStat, error) {
	now := time.Now().UTC()
	out := make([]MonthlyStat, 0, months)
	for i := 0; i < months; i++ {
		t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		ms, err := Monthly(db, userID, t.Year(), int(t.Month()))
		if err != nil {
			return nil, err
		}
		if ms.TransactionCount > 0 {
			out = append(out, *ms)
		}
	}
	return out, nil
}
