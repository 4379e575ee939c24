package derive

import (
	"reflect"
	"testing"

	"github.com/yourorg/lending-monitor/internal/model"
)

func testSnapshot() model.Snapshot {
	snap := model.Snapshot{
		Total:             20000,
		AutoP:             15000,
		History:           800,
		HistAPY:           13.0,
		IdlePct:           4.5,
		FX:                31.5,
		MarketFRR:         12.0,
		MarketTWAP:        8.5,
		NextRepaymentTime: 5400,
		AIInsight:         "hold steady",
	}
	snap.Stats.Overall = model.OverallStats{
		TrueAPY:   11.0,
		GrossRate: 14.0,
		Wait:      26.5,
		Survive:   3.25,
	}
	return snap
}

func TestDerive(t *testing.T) {
	equity := []model.EquityPoint{
		{RecordDate: "2026-01-10", HistP: 100},
		{RecordDate: "2026-02-10", HistP: 160},
	}
	decisions := []model.DecisionRecord{
		{BotRateYearly: 12, MarketFRR: 10},
	}

	got := Derive(testSnapshot(), decisions, equity, 2)

	if !got.Spoof.Spoofed {
		t.Error("expected spoof flag for 3.5 point spread")
	}
	if got.Overview.UtilizationPct != 95.5 {
		t.Errorf("UtilizationPct = %v, want 95.5", got.Overview.UtilizationPct)
	}
	if got.Overview.TotalNTD != 20000*31.5 {
		t.Errorf("TotalNTD = %v, want %v", got.Overview.TotalNTD, 20000*31.5)
	}
	if got.Overview.NextRepayment != "1h 30m" {
		t.Errorf("NextRepayment = %q, want %q", got.Overview.NextRepayment, "1h 30m")
	}
	if got.Overview.ZeroCost {
		t.Error("ZeroCost set despite deployed principal")
	}
	// Principal deployed, so the benchmark base row uses HistAPY.
	if got.Performance.CurrentRate != 13.0 {
		t.Errorf("CurrentRate = %v, want 13.0", got.Performance.CurrentRate)
	}
	if got.Performance.AvgWait != "1 days 2h" {
		t.Errorf("AvgWait = %q, want %q", got.Performance.AvgWait, "1 days 2h")
	}
	if got.Performance.AvgSurvive != "3h 15m" {
		t.Errorf("AvgSurvive = %q, want %q", got.Performance.AvgSurvive, "3h 15m")
	}
	if got.Alpha.Count != 1 || got.Alpha.WinRate != 100 {
		t.Errorf("Alpha = %+v, want one win", got.Alpha)
	}
	if len(got.MonthlyProfits) != 2 || got.MonthlyProfits[0].Profit != 60 {
		t.Errorf("MonthlyProfits = %+v", got.MonthlyProfits)
	}
	if got.Projection.Years != 2 {
		t.Errorf("Projection.Years = %d, want 2", got.Projection.Years)
	}
	if got.AIInsight != "hold steady" {
		t.Errorf("AIInsight = %q, not passed through", got.AIInsight)
	}
}

// A resource that failed upstream arrives here as its empty default; the
// fields derived from the surviving resources must still be populated.
func TestDerivePartialInputs(t *testing.T) {
	equity := []model.EquityPoint{{RecordDate: "2026-01-10", HistP: 100}}

	got := Derive(testSnapshot(), nil, equity, 1)

	if got.Alpha.Count != 0 || got.Alpha.WinRate != 0 || got.Alpha.AvgAlpha != 0 {
		t.Errorf("Alpha = %+v, want empty defaults", got.Alpha)
	}
	if len(got.MonthlyProfits) != 1 {
		t.Errorf("MonthlyProfits = %+v, want one bucket", got.MonthlyProfits)
	}
	if !got.Spoof.Spoofed || got.Overview.Total != 20000 {
		t.Error("snapshot-derived fields lost when decisions were empty")
	}
}

func TestDeriveEmptyInputsAreWellDefined(t *testing.T) {
	got := Derive(model.Snapshot{}, nil, nil, 1)

	if got.Overview.FX != defaultFX {
		t.Errorf("FX = %v, want fallback %v", got.Overview.FX, defaultFX)
	}
	if !got.Overview.ZeroCost {
		t.Error("empty snapshot should report zero cost")
	}
	if got.Overview.NextRepayment != "--" {
		t.Errorf("NextRepayment = %q, want --", got.Overview.NextRepayment)
	}
	if got.Loans.Count != 0 || got.Offers.Count != 0 {
		t.Errorf("summaries not empty: %+v %+v", got.Loans, got.Offers)
	}
}

// DerivedState is a pure function of its inputs.
func TestDeriveDeterministic(t *testing.T) {
	equity := []model.EquityPoint{{RecordDate: "2026-01-10", HistP: 100}}
	decisions := []model.DecisionRecord{{BotRateYearly: 12, MarketFRR: 10}}

	a := Derive(testSnapshot(), decisions, equity, 3)
	b := Derive(testSnapshot(), decisions, equity, 3)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different outputs")
	}
}
