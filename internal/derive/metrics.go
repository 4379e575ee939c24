package derive

import (
	"math"

	"github.com/yourorg/lending-monitor/internal/model"
)

// SpoofThreshold is the FRR-over-TWAP spread, in percentage points, above
// which the quoted rate is flagged as manipulated. Policy constant, not
// derived.
const SpoofThreshold = 3.0

// Projection horizon bounds, whole years.
const (
	MinProjectionYears = 1
	MaxProjectionYears = 5
)

// baseRowName labels the strategy's own row in the benchmark table.
const baseRowName = "Bitfinex (current)"

// referenceInstruments is the fixed comparison set: dividend ETFs with
// their published yields.
var referenceInstruments = []struct {
	Name string
	Rate float64
}{
	{"0056 (Yuanta High Dividend)", 7.50},
	{"00878 (Cathay ESG Dividend)", 7.00},
	{"00713 (Yuanta Low Volatility)", 8.00},
}

// DetectSpoof flags a quoted FRR that runs more than SpoofThreshold points
// above the time-weighted actual rate. A spread of exactly the threshold
// is not flagged.
func DetectSpoof(frr, twap float64) model.SpoofStatus {
	return model.SpoofStatus{
		Spoofed:    frr-twap > SpoofThreshold,
		MarketFRR:  frr,
		MarketTWAP: twap,
	}
}

// Benchmarks builds the comparison table of the strategy yield against the
// reference instruments. Every row tied at the maximum rate is marked a
// winner; the base row is the baseline and carries no spread.
func Benchmarks(strategyRate float64) []model.BenchmarkRow {
	rows := make([]model.BenchmarkRow, 0, len(referenceInstruments)+1)
	rows = append(rows, model.BenchmarkRow{
		Name:   baseRowName,
		Rate:   strategyRate,
		IsBase: true,
	})
	for _, ref := range referenceInstruments {
		spread := strategyRate - ref.Rate
		rows = append(rows, model.BenchmarkRow{
			Name:   ref.Name,
			Rate:   ref.Rate,
			Spread: &spread,
		})
	}

	maxRate := rows[0].Rate
	for _, r := range rows[1:] {
		if r.Rate > maxRate {
			maxRate = r.Rate
		}
	}
	for i := range rows {
		rows[i].IsWinner = rows[i].Rate == maxRate
	}
	return rows
}

// Alpha computes win-rate and average alpha over the decision log. A null
// TWAP coalesces to the record's FRR. An empty log yields zeros, never NaN.
func Alpha(decisions []model.DecisionRecord) model.AlphaStats {
	if len(decisions) == 0 {
		return model.AlphaStats{}
	}

	wins := 0
	alphaSum := 0.0
	for _, d := range decisions {
		twap := d.TWAPOrFRR()
		if d.BotRateYearly >= twap {
			wins++
		}
		alphaSum += d.BotRateYearly - twap
	}

	n := float64(len(decisions))
	return model.AlphaStats{
		WinRate:  float64(wins) / n * 100,
		AvgAlpha: alphaSum / n,
		Count:    len(decisions),
	}
}

// Project compounds the current total assets at the given APY over a
// whole-year horizon, clamped to the allowed range. Exact exponentiation,
// not a linear approximation.
func Project(total, apyPercent float64, years int) model.Projection {
	if years < MinProjectionYears {
		years = MinProjectionYears
	}
	if years > MaxProjectionYears {
		years = MaxProjectionYears
	}

	future := total * math.Pow(1+apyPercent/100, float64(years))
	return model.Projection{
		Years:        years,
		FutureValue:  future,
		ProfitGained: future - total,
	}
}
