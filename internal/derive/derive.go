// Package derive computes the comparison and projection metrics published
// after each refresh cycle. Every function here is pure and read-only over
// the fetched records: identical inputs reproduce identical output, missing
// data degrades to zero values, and nothing ever panics on an empty input.
package derive

import (
	"fmt"

	"github.com/yourorg/lending-monitor/internal/model"
	"github.com/yourorg/lending-monitor/internal/timefmt"
)

// defaultFX mirrors the engine's fallback USD/NTD rate when the snapshot
// carries none.
const defaultFX = 32

// Derive builds a complete DerivedState from one cycle's fetched inputs.
func Derive(snap model.Snapshot, decisions []model.DecisionRecord, equity []model.EquityPoint, years int) model.DerivedState {
	rate := StrategyRate(snap)
	return model.DerivedState{
		Overview:       overview(snap),
		Spoof:          DetectSpoof(snap.MarketFRR, snap.MarketTWAP),
		Benchmarks:     Benchmarks(rate),
		Alpha:          Alpha(decisions),
		MonthlyProfits: MonthlyProfits(equity),
		Projection:     Project(snap.Total, snap.Stats.Overall.TrueAPY, years),
		Loans:          SummarizeLoans(snap.Loans),
		Offers:         SummarizeOffers(snap.Offers),
		Performance:    performance(snap, rate),
		AIInsight:      snap.AIInsight,
	}
}

// StrategyRate picks the yield used for benchmark comparison: the realized
// annualized yield while principal is deployed, else the upstream overall
// true APY.
func StrategyRate(snap model.Snapshot) float64 {
	if snap.AutoP > 0 {
		return snap.HistAPY
	}
	return snap.Stats.Overall.TrueAPY
}

// overview lifts the snapshot's headline figures into display form.
func overview(snap model.Snapshot) model.Overview {
	fx := snap.FX
	if fx == 0 {
		fx = defaultFX
	}
	return model.Overview{
		Total:           snap.Total,
		TotalNTD:        snap.Total * fx,
		Principal:       snap.AutoP,
		ZeroCost:        snap.AutoP <= 0,
		History:         snap.History,
		TodayProfit:     snap.TodayProfit,
		FloatingPayout:  snap.FloatingPayout,
		NextPayoutTotal: snap.NextPayoutTotal,
		ActiveAPR:       snap.ActiveAPR,
		IdlePct:         snap.IdlePct,
		UtilizationPct:  100 - snap.IdlePct,
		DailyMissed:     snap.DailyMissed,
		FX:              fx,
		NextRepayment:   timefmt.FormatDurationSmart(snap.NextRepaymentTime),
	}
}

// performance echoes the upstream overall stats, formatting the
// hour-granularity fields for display.
func performance(snap model.Snapshot, rate float64) model.Performance {
	o := snap.Stats.Overall
	return model.Performance{
		TrueAPY:     o.TrueAPY,
		GrossRate:   o.GrossRate,
		AvgWait:     hoursLabel(o.Wait),
		AvgSurvive:  hoursLabel(o.Survive),
		IsEmpty:     o.IsEmpty,
		CurrentRate: rate,
	}
}

// hoursLabel renders a fractional hour count as "Hh Mm", re-expressed in
// day granularity once it passes 24 hours.
func hoursLabel(hours float64) string {
	h := int(hours)
	m := int(hours*60) % 60
	return timefmt.NormalizeOverflowLabel(fmt.Sprintf("%dh %dm", h, m))
}
