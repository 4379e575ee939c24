// Package timefmt normalizes upstream timestamps and durations for display.
package timefmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Unsynced is the sentinel the fetcher reports before the first successful
// snapshot read.
const Unsynced = "unsynced"

// NotSyncedLabel is what the sentinel renders as.
const NotSyncedLabel = "not yet synced"

// NoDurationLabel renders durations that are unknown or out of range.
const NoDurationLabel = "--"

// durationCeiling is the upstream sentinel for "no repayment pending".
const durationCeiling = 9999999

// parseLayouts are tried in order; bare layouts are assumed UTC.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalizer converts UTC timestamps into a fixed display timezone.
type Normalizer struct {
	loc *time.Location
}

// New creates a Normalizer for the named IANA timezone. An unknown name
// falls back to a fixed UTC+8 zone so display never breaks.
func New(tzName string) *Normalizer {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		logrus.Warnf("Unknown display timezone %q, using fixed UTC+8", tzName)
		loc = time.FixedZone("UTC+8", 8*3600)
	}
	return &Normalizer{loc: loc}
}

// ToLocalDisplay converts an ISO-8601 UTC timestamp to the display
// timezone, formatted MM/DD HH:MM:SS. The unsynced sentinel renders as a
// fixed label, and an unparsable input falls back to a naive substring of
// the raw string. It never fails.
func (n *Normalizer) ToLocalDisplay(raw string) string {
	if raw == "" || raw == Unsynced {
		return NotSyncedLabel
	}

	for _, layout := range parseLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return t.In(n.loc).Format("01/02 15:04:05")
		}
	}

	// Unknown shape: keep it readable rather than erroring out.
	s := strings.Replace(raw, "T", " ", 1)
	if len(s) > 19 {
		s = s[:19]
	}
	return s
}

// FormatDurationSmart renders a second count as "Hh Mm", switching to day
// granularity from 24 hours up. Values at or above the upstream sentinel,
// and non-positive values, render as NoDurationLabel.
func FormatDurationSmart(seconds float64) string {
	if seconds <= 0 || seconds >= durationCeiling {
		return NoDurationLabel
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	if h >= 24 {
		return fmt.Sprintf("%d days %dh", h/24, h%24)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// NormalizeOverflowLabel re-expresses an already-formatted "Hh Mm" label in
// day granularity when the hour part reaches 24. Anything unparsable passes
// through unchanged.
func NormalizeOverflowLabel(label string) string {
	var h, m int
	if _, err := fmt.Sscanf(label, "%dh %dm", &h, &m); err != nil {
		return label
	}
	if h >= 24 {
		return fmt.Sprintf("%d days %dh", h/24, h%24)
	}
	return label
}
