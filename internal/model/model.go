// Package model defines the core data structures for lending-monitor.
package model

// Snapshot is the latest full state record produced by the upstream engine.
// It is overwritten wholesale in the backing store; this layer only reads
// the most recent copy and never mutates it.
type Snapshot struct {
	// Total is the combined USD/USDT net asset value
	Total float64 `json:"total"`

	// AutoP is the invested principal; zero means the position runs on
	// accumulated profit only
	AutoP float64 `json:"auto_p"`

	// History is the cumulative realized profit since the start date
	History float64 `json:"history"`

	// TodayProfit is the realized profit for the current day
	TodayProfit float64 `json:"today_profit"`

	// FloatingPayout is the estimated payout of currently accruing loans
	FloatingPayout float64 `json:"floating_payout"`

	// IdlePct is the percentage of funds sitting unlent
	IdlePct float64 `json:"idle_pct"`

	// DailyMissed is the estimated daily profit lost to idle funds
	DailyMissed float64 `json:"daily_missed"`

	// ActiveAPR is the net annualized rate across active loans
	ActiveAPR float64 `json:"active_apr"`

	// HistAPY is the realized annualized yield against the principal
	HistAPY float64 `json:"hist_apy"`

	// NextPayoutTotal is the sum of the next expected interest payments
	NextPayoutTotal float64 `json:"next_payout_total"`

	// NextRepaymentTime is seconds until the nearest loan unlocks.
	// The upstream engine writes 9999999 when no funds are lent out.
	NextRepaymentTime float64 `json:"next_repayment_time"`

	// FX is the USD to NTD conversion rate used for display
	FX float64 `json:"fx"`

	// MarketFRR is the exchange's quoted flash return rate, percent
	MarketFRR float64 `json:"market_frr"`

	// MarketTWAP is the time-weighted average of actually transacted
	// rates over the upstream lookback window, percent
	MarketTWAP float64 `json:"market_twap"`

	// StuckOffersCount is the number of offers flagged as stalled upstream
	StuckOffersCount int `json:"stuck_offers_count"`

	// LoggedDecisionsCount is the size of the upstream decision log
	LoggedDecisionsCount int `json:"logged_decisions_count"`

	// StartDate is the strategy's start date, YYYY-MM-DD
	StartDate string `json:"start_date"`

	// AIInsight is the stored advisory text, passed through untouched
	AIInsight string `json:"ai_insight_stored"`

	// Stats holds the upstream performance sub-records
	Stats Stats `json:"stats"`

	// Loans are the normalized active loan records
	Loans []LoanRecord `json:"loans"`

	// Offers are the normalized queued offer records
	Offers []OfferRecord `json:"offers"`
}

// Stats wraps the performance sub-records computed upstream.
type Stats struct {
	Overall OverallStats `json:"overall"`
}

// OverallStats is the upstream engine's aggregate strategy performance.
type OverallStats struct {
	// TrueAPY is the realized equivalent annual yield, percent
	TrueAPY float64 `json:"true_apy"`

	// GrossRate is the average gross rate across completed loans, percent
	GrossRate float64 `json:"gross_rate"`

	// Wait is the average queue wait before an offer filled, hours
	Wait float64 `json:"wait"`

	// Survive is the average lifetime of a filled loan, hours
	Survive float64 `json:"survive"`

	// IsEmpty distinguishes "no completed cycles yet" from genuine zeros
	IsEmpty bool `json:"is_empty"`
}

// LoanRecord is one active lending position. Immutable once fetched.
type LoanRecord struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Rate        float64 `json:"rate"`         // net annualized, percent
	DailyProfit float64 `json:"daily_profit"` // estimated, USD
	StartedAt   string  `json:"started_at"`
	ExpiresAt   string  `json:"expires_at"`
}

// OfferRecord is one queued lending offer awaiting a match.
type OfferRecord struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`     // free-text upstream label
	GrossRate string  `json:"gross_rate"` // display label, e.g. "18.25%"
	Period    string  `json:"period"`     // display label, e.g. "2d"
	Queued    string  `json:"queued"`     // elapsed queue time label
}

// DecisionRecord is one entry of the bot's append-only decision log,
// fetched most-recent-first and capped to the latest 100 entries.
type DecisionRecord struct {
	CreatedAt     string  `json:"created_at"`
	BotRateYearly float64 `json:"bot_rate_yearly"`
	MarketFRR     float64 `json:"market_frr"`
	BotAmount     float64 `json:"bot_amount"`
	BotPeriod     int     `json:"bot_period"`

	// MarketTWAP is nullable upstream; nil must coalesce to MarketFRR
	MarketTWAP *float64 `json:"market_twap"`
}

// TWAPOrFRR returns the decision's market TWAP, falling back to the
// quoted FRR when the TWAP column was null.
func (d DecisionRecord) TWAPOrFRR() float64 {
	if d.MarketTWAP != nil {
		return *d.MarketTWAP
	}
	return d.MarketFRR
}

// EquityPoint is one sample of the cumulative equity curve, ordered
// ascending by RecordDate.
type EquityPoint struct {
	RecordDate string  `json:"record_date"` // YYYY-MM-DD
	AutoP      float64 `json:"auto_p"`
	HistP      float64 `json:"hist_p"` // cumulative historical profit
}
