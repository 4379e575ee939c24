package derive

import (
	"math"
	"testing"

	"github.com/yourorg/lending-monitor/internal/model"
)

func TestDetectSpoof(t *testing.T) {
	tests := []struct {
		name string
		frr  float64
		twap float64
		want bool
	}{
		{"wide spread flags", 10.0, 6.9, true},
		{"narrow spread passes", 10.0, 7.1, false},
		{"boundary spread is exclusive", 10.0, 7.0, false},
		{"inverted spread passes", 6.0, 10.0, false},
		{"both zero passes", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectSpoof(tt.frr, tt.twap)
			if got.Spoofed != tt.want {
				t.Errorf("DetectSpoof(%v, %v).Spoofed = %v, want %v", tt.frr, tt.twap, got.Spoofed, tt.want)
			}
			if got.MarketFRR != tt.frr || got.MarketTWAP != tt.twap {
				t.Errorf("source values not carried: got %+v", got)
			}
		})
	}
}

func TestBenchmarks(t *testing.T) {
	t.Run("single maximum has single winner", func(t *testing.T) {
		rows := Benchmarks(9.0)
		winners := 0
		for _, r := range rows {
			if r.IsWinner {
				winners++
				if !r.IsBase {
					t.Errorf("unexpected winner %q", r.Name)
				}
			}
		}
		if winners != 1 {
			t.Errorf("winners = %d, want 1", winners)
		}
	})

	t.Run("ties mark every tie holder", func(t *testing.T) {
		// 8.00 ties the highest reference instrument.
		rows := Benchmarks(8.0)
		winners := 0
		for _, r := range rows {
			if r.IsWinner {
				winners++
			}
		}
		if winners != 2 {
			t.Errorf("winners = %d, want 2", winners)
		}
	})

	t.Run("spreads are signed against the strategy rate", func(t *testing.T) {
		rows := Benchmarks(7.0)
		for _, r := range rows {
			if r.IsBase {
				if r.Spread != nil {
					t.Errorf("base row spread = %v, want none", *r.Spread)
				}
				continue
			}
			want := 7.0 - r.Rate
			if r.Spread == nil || *r.Spread != want {
				t.Errorf("%s spread = %v, want %v", r.Name, r.Spread, want)
			}
		}
	})

	t.Run("base row comes first", func(t *testing.T) {
		rows := Benchmarks(5.0)
		if len(rows) != 4 || !rows[0].IsBase {
			t.Fatalf("unexpected table shape: %+v", rows)
		}
	})
}

func TestAlpha(t *testing.T) {
	twap := func(v float64) *float64 { return &v }

	t.Run("empty log yields zeros not NaN", func(t *testing.T) {
		got := Alpha(nil)
		if got.WinRate != 0 || got.AvgAlpha != 0 || got.Count != 0 {
			t.Errorf("Alpha(nil) = %+v, want zeros", got)
		}
		if math.IsNaN(got.WinRate) || math.IsNaN(got.AvgAlpha) {
			t.Error("Alpha(nil) produced NaN")
		}
	})

	t.Run("null twap coalesces to frr", func(t *testing.T) {
		decisions := []model.DecisionRecord{
			{BotRateYearly: 12, MarketFRR: 10, MarketTWAP: nil},     // win, alpha +2
			{BotRateYearly: 8, MarketFRR: 20, MarketTWAP: twap(9)},  // loss, alpha -1
		}
		got := Alpha(decisions)
		if got.WinRate != 50 {
			t.Errorf("WinRate = %v, want 50", got.WinRate)
		}
		if got.AvgAlpha != 0.5 {
			t.Errorf("AvgAlpha = %v, want 0.5", got.AvgAlpha)
		}
		if got.Count != 2 {
			t.Errorf("Count = %d, want 2", got.Count)
		}
	})

	t.Run("rate equal to twap counts as a win", func(t *testing.T) {
		decisions := []model.DecisionRecord{
			{BotRateYearly: 10, MarketTWAP: twap(10)},
		}
		if got := Alpha(decisions); got.WinRate != 100 {
			t.Errorf("WinRate = %v, want 100", got.WinRate)
		}
	})
}

func TestProject(t *testing.T) {
	t.Run("compounding is exact", func(t *testing.T) {
		got := Project(1000, 12, 2)
		want := 1000 * 1.12 * 1.12 // 1254.4
		if math.Abs(got.FutureValue-want) > 1e-9 {
			t.Errorf("FutureValue = %v, want %v", got.FutureValue, want)
		}
		if math.Abs(got.ProfitGained-(want-1000)) > 1e-9 {
			t.Errorf("ProfitGained = %v, want %v", got.ProfitGained, want-1000)
		}
	})

	t.Run("horizon clamps to allowed range", func(t *testing.T) {
		if got := Project(1000, 10, 0); got.Years != 1 {
			t.Errorf("Years = %d, want 1", got.Years)
		}
		if got := Project(1000, 10, 9); got.Years != 5 {
			t.Errorf("Years = %d, want 5", got.Years)
		}
	})

	t.Run("empty inputs stay well defined", func(t *testing.T) {
		got := Project(0, 0, 1)
		if got.FutureValue != 0 || got.ProfitGained != 0 {
			t.Errorf("Project(0,0,1) = %+v, want zeros", got)
		}
	})
}

func TestStrategyRate(t *testing.T) {
	withPrincipal := model.Snapshot{AutoP: 5000, HistAPY: 14.2}
	withPrincipal.Stats.Overall.TrueAPY = 11.0
	if got := StrategyRate(withPrincipal); got != 14.2 {
		t.Errorf("StrategyRate with principal = %v, want 14.2", got)
	}

	zeroCost := model.Snapshot{AutoP: 0, HistAPY: 14.2}
	zeroCost.Stats.Overall.TrueAPY = 11.0
	if got := StrategyRate(zeroCost); got != 11.0 {
		t.Errorf("StrategyRate without principal = %v, want 11.0", got)
	}
}
