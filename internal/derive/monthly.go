package derive

import (
	"time"

	"github.com/yourorg/lending-monitor/internal/model"
)

// MonthlyProfits buckets the equity curve by calendar month and reports
// each month's profit as the difference between its last cumulative value
// and the previous month's. The earliest month has no prior baseline, so
// its profit equals its own cumulative value. Input is assumed ascending
// by date; output is most recent first.
func MonthlyProfits(points []model.EquityPoint) []model.MonthlyProfit {
	if len(points) == 0 {
		return nil
	}

	var order []string
	last := make(map[string]float64)
	for _, p := range points {
		month := monthKey(p.RecordDate)
		if month == "" {
			continue
		}
		if _, seen := last[month]; !seen {
			order = append(order, month)
		}
		// Ascending input: the latest sample in a month wins.
		last[month] = p.HistP
	}

	profits := make([]model.MonthlyProfit, 0, len(order))
	prev := 0.0
	for _, month := range order {
		profits = append(profits, model.MonthlyProfit{
			Month:  month,
			Profit: last[month] - prev,
		})
		prev = last[month]
	}

	for i, j := 0, len(profits)-1; i < j; i, j = i+1, j-1 {
		profits[i], profits[j] = profits[j], profits[i]
	}
	return profits
}

// monthKey extracts the YYYY-MM label from a record date. Unparsable dates
// that still look ISO-shaped fall back to their prefix; anything shorter is
// skipped.
func monthKey(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("2006-01")
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.Format("2006-01")
	}
	if len(date) >= 7 {
		return date[:7]
	}
	return ""
}
