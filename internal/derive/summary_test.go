package derive

import (
	"testing"

	"github.com/yourorg/lending-monitor/internal/model"
)

func TestSummarizeLoans(t *testing.T) {
	t.Run("weighted rate and totals", func(t *testing.T) {
		loans := []model.LoanRecord{
			{Amount: 1000, Rate: 10, DailyProfit: 0.5},
			{Amount: 3000, Rate: 20, DailyProfit: 1.25},
		}
		got := SummarizeLoans(loans)
		if got.Count != 2 {
			t.Errorf("Count = %d, want 2", got.Count)
		}
		if got.TotalAmount != 4000 {
			t.Errorf("TotalAmount = %v, want 4000", got.TotalAmount)
		}
		// (10*1000 + 20*3000) / 4000
		if got.WeightedRate != 17.5 {
			t.Errorf("WeightedRate = %v, want 17.5", got.WeightedRate)
		}
		if got.DailyProfit != 1.75 {
			t.Errorf("DailyProfit = %v, want 1.75", got.DailyProfit)
		}
	})

	t.Run("empty list yields zeros", func(t *testing.T) {
		got := SummarizeLoans(nil)
		if got.Count != 0 || got.TotalAmount != 0 || got.WeightedRate != 0 {
			t.Errorf("SummarizeLoans(nil) = %+v, want zeros", got)
		}
	})
}

func TestSummarizeOffers(t *testing.T) {
	offers := []model.OfferRecord{
		{Amount: 500, Status: "Stalled in queue"},
		{Amount: 700, Status: "stalled (rolled over)"}, // stalled wins over rolled
		{Amount: 300, Status: "Rolled to new rate"},
		{Amount: 200, Status: "waiting for match"},
		{Amount: 100, Status: ""},
	}

	got := SummarizeOffers(offers)
	if got.Count != 5 {
		t.Errorf("Count = %d, want 5", got.Count)
	}
	if got.TotalAmount != 1800 {
		t.Errorf("TotalAmount = %v, want 1800", got.TotalAmount)
	}
	if got.Stalled != 2 || got.Rolled != 1 || got.Matching != 2 {
		t.Errorf("buckets = %d/%d/%d, want 2/1/2", got.Stalled, got.Rolled, got.Matching)
	}
	if got.Stalled+got.Rolled+got.Matching != got.Count {
		t.Error("buckets are not mutually exclusive")
	}
}
