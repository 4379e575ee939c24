package model

// DerivedState is the complete output of one refresh cycle. It is a pure
// function of (Snapshot, []DecisionRecord, []EquityPoint): identical inputs
// reproduce identical output. It is fully replaced on publish, never merged,
// so readers only ever see a complete, consistent copy.
type DerivedState struct {
	// Overview mirrors the snapshot's headline figures for display
	Overview Overview `json:"overview"`

	// Spoof is the market-manipulation indicator
	Spoof SpoofStatus `json:"spoof"`

	// Benchmarks compares the strategy yield against reference instruments
	Benchmarks []BenchmarkRow `json:"benchmarks"`

	// Alpha holds win-rate statistics over the decision log
	Alpha AlphaStats `json:"alpha"`

	// MonthlyProfits lists per-month realized profit, most recent first
	MonthlyProfits []MonthlyProfit `json:"monthly_profits"`

	// Projection is the compound-growth estimate for the chosen horizon
	Projection Projection `json:"projection"`

	// Loans aggregates the active loan list
	Loans LoanSummary `json:"loans"`

	// Offers aggregates the queued offer list
	Offers OfferSummary `json:"offers"`

	// Performance echoes the upstream overall stats with formatted labels
	Performance Performance `json:"performance"`

	// AIInsight is the stored advisory text, passed through untouched
	AIInsight string `json:"ai_insight,omitempty"`
}

// Overview is the headline block of the dashboard.
type Overview struct {
	Total           float64 `json:"total"`
	TotalNTD        float64 `json:"total_ntd"`
	Principal       float64 `json:"principal"`
	ZeroCost        bool    `json:"zero_cost"` // principal fully recouped
	History         float64 `json:"history"`
	TodayProfit     float64 `json:"today_profit"`
	FloatingPayout  float64 `json:"floating_payout"`
	NextPayoutTotal float64 `json:"next_payout_total"`
	ActiveAPR       float64 `json:"active_apr"`
	IdlePct         float64 `json:"idle_pct"`
	UtilizationPct  float64 `json:"utilization_pct"` // 100 - IdlePct
	DailyMissed     float64 `json:"daily_missed"`
	FX              float64 `json:"fx"`

	// NextRepayment is the formatted countdown to the nearest unlock;
	// "--" when no funds are lent out
	NextRepayment string `json:"next_repayment"`
}

// SpoofStatus flags a quoted market rate that diverges suspiciously from
// the time-weighted actual rate.
type SpoofStatus struct {
	Spoofed    bool    `json:"spoofed"`
	MarketFRR  float64 `json:"market_frr"`
	MarketTWAP float64 `json:"market_twap"`
}

// BenchmarkRow is one instrument in the yield comparison table.
type BenchmarkRow struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`

	// IsBase marks the strategy's own row; it carries no spread
	IsBase bool `json:"is_base"`

	// IsWinner marks every row tied at the maximum rate
	IsWinner bool `json:"is_winner"`

	// Spread is strategy rate minus this instrument's rate, signed.
	// Nil on the base row: the baseline has no spread against itself.
	Spread *float64 `json:"spread,omitempty"`
}

// AlphaStats summarizes how the bot's quoted rates fared against the
// market TWAP benchmark across the decision log.
type AlphaStats struct {
	// WinRate is the share of decisions at or above TWAP, percent
	WinRate float64 `json:"win_rate"`

	// AvgAlpha is the mean spread of bot rate over TWAP, points
	AvgAlpha float64 `json:"avg_alpha"`

	// Count is the number of decisions inspected
	Count int `json:"count"`
}

// MonthlyProfit is the realized profit attributed to one calendar month.
type MonthlyProfit struct {
	Month  string  `json:"month"` // YYYY-MM
	Profit float64 `json:"profit"`
}

// Projection is the compound-growth estimate over a whole-year horizon.
type Projection struct {
	Years        int     `json:"years"`
	FutureValue  float64 `json:"future_value"`
	ProfitGained float64 `json:"profit_gained"`
}

// LoanSummary aggregates the active loan list.
type LoanSummary struct {
	Count        int     `json:"count"`
	TotalAmount  float64 `json:"total_amount"`
	WeightedRate float64 `json:"weighted_rate"` // amount-weighted, percent
	DailyProfit  float64 `json:"daily_profit"`
}

// OfferSummary aggregates the queued offer list with the three mutually
// exclusive status buckets.
type OfferSummary struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	Stalled     int     `json:"stalled"`
	Rolled      int     `json:"rolled"`
	Matching    int     `json:"matching"`
}

// Performance echoes the upstream overall stats with display formatting
// applied to the hour-granularity fields.
type Performance struct {
	TrueAPY     float64 `json:"true_apy"`
	GrossRate   float64 `json:"gross_rate"`
	AvgWait     string  `json:"avg_wait"`    // formatted "Hh Mm" or days
	AvgSurvive  string  `json:"avg_survive"` // formatted "Hh Mm" or days
	IsEmpty     bool    `json:"is_empty"`
	CurrentRate float64 `json:"current_rate"` // yield used for benchmarks
}
