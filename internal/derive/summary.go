package derive

import (
	"github.com/yourorg/lending-monitor/internal/model"
	"github.com/yourorg/lending-monitor/internal/validation"
)

// SummarizeLoans aggregates the active loan list: count, total amount,
// amount-weighted rate, and summed estimated daily profit.
func SummarizeLoans(loans []model.LoanRecord) model.LoanSummary {
	s := model.LoanSummary{Count: len(loans)}

	weighted := 0.0
	for _, l := range loans {
		s.TotalAmount += l.Amount
		s.DailyProfit += l.DailyProfit
		weighted += l.Rate * l.Amount
	}
	if s.TotalAmount > 0 {
		s.WeightedRate = weighted / s.TotalAmount
	}
	return s
}

// SummarizeOffers aggregates the queued offer list, classifying each offer
// into one of the three status buckets via the validation shim.
func SummarizeOffers(offers []model.OfferRecord) model.OfferSummary {
	s := model.OfferSummary{Count: len(offers)}

	for _, o := range offers {
		s.TotalAmount += o.Amount
		switch validation.ClassifyOfferStatus(o.Status) {
		case validation.ClassStalled:
			s.Stalled++
		case validation.ClassRolled:
			s.Rolled++
		default:
			s.Matching++
		}
	}
	return s
}
