// Package validation resolves the upstream store's loosely-typed record
// shapes into the canonical model types at the fetch boundary, so the
// derivation code never has to know about alternate field names.
package validation

import (
	"strconv"
	"strings"

	"github.com/yourorg/lending-monitor/internal/model"
)

// Key aliases observed in upstream payloads. Older engine versions wrote
// display-oriented names; both shapes must resolve to one canonical record.
var (
	loanAmountKeys  = []string{"amount", "amount_usd"}
	loanRateKeys    = []string{"rate", "net_rate", "annual_rate"}
	loanProfitKeys  = []string{"daily_profit", "est_daily_profit"}
	offerAmountKeys = []string{"amount", "amount_usd"}
	offerStatusKeys = []string{"status", "state"}
)

// OfferClass is the enumerated reading of an offer's free-text status.
type OfferClass int

const (
	// ClassMatching is the default bucket: the offer sits in the queue.
	ClassMatching OfferClass = iota

	// ClassRolled marks offers the engine re-submitted at a new rate.
	ClassRolled

	// ClassStalled marks offers stuck in the queue past the engine's
	// patience threshold.
	ClassStalled
)

// String returns a stable label for the class.
func (c OfferClass) String() string {
	switch c {
	case ClassStalled:
		return "stalled"
	case ClassRolled:
		return "rolled"
	default:
		return "matching"
	}
}

// ClassifyOfferStatus maps an upstream free-text status label onto an
// OfferClass. This is a compatibility shim: the upstream label is
// human-readable rather than a true enum, so classification is by keyword
// containment with "stalled" taking precedence over "rolled" and anything
// else counting as still matching.
func ClassifyOfferStatus(status string) OfferClass {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "stalled"):
		return ClassStalled
	case strings.Contains(s, "rolled"):
		return ClassRolled
	default:
		return ClassMatching
	}
}

// NormalizeLoans maps raw loan rows into canonical LoanRecords. Missing
// fields become zero values; no row is ever rejected.
func NormalizeLoans(rows []map[string]interface{}) []model.LoanRecord {
	if len(rows) == 0 {
		return nil
	}
	loans := make([]model.LoanRecord, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, model.LoanRecord{
			Amount:      floatField(row, loanAmountKeys...),
			Currency:    stringField(row, "currency", "ccy"),
			Rate:        floatField(row, loanRateKeys...),
			DailyProfit: floatField(row, loanProfitKeys...),
			StartedAt:   stringField(row, "started_at", "start"),
			ExpiresAt:   stringField(row, "expires_at", "end"),
		})
	}
	return loans
}

// NormalizeOffers maps raw offer rows into canonical OfferRecords.
func NormalizeOffers(rows []map[string]interface{}) []model.OfferRecord {
	if len(rows) == 0 {
		return nil
	}
	offers := make([]model.OfferRecord, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, model.OfferRecord{
			Amount:    floatField(row, offerAmountKeys...),
			Currency:  stringField(row, "currency", "ccy"),
			Status:    stringField(row, offerStatusKeys...),
			GrossRate: stringField(row, "gross_rate", "rate_label"),
			Period:    stringField(row, "period"),
			Queued:    stringField(row, "queued", "queue_time"),
		})
	}
	return offers
}

// floatField returns the first aliased key holding a numeric value.
// JSON decoding yields float64 for numbers, but older payloads carried
// stringified amounts, so strings are parsed too.
func floatField(row map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		v, ok := row[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// stringField returns the first aliased key holding a string value.
func stringField(row map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := row[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
