package timefmt

import (
	"testing"
)

func TestFormatDurationSmart(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "--"},
		{"negative", -5, "--"},
		{"sentinel", 9999999, "--"},
		{"above sentinel", 10000000, "--"},
		{"just below sentinel", 9999998, "115 days 17h"},
		{"under a minute", 59, "0h 0m"},
		{"hour and a minute", 3660, "1h 1m"},
		{"just under a day", 86399, "23h 59m"},
		{"exactly a day", 86400, "1 days 0h"},
		{"day and an hour", 90000, "1 days 1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDurationSmart(tt.seconds); got != tt.want {
				t.Errorf("FormatDurationSmart(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestNormalizeOverflowLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"under a day", "5h 30m", "5h 30m"},
		{"exactly a day", "24h 0m", "1 days 0h"},
		{"over a day", "26h 10m", "1 days 2h"},
		{"two days plus", "50h 45m", "2 days 2h"},
		{"unparsable passes through", "no funds", "no funds"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeOverflowLabel(tt.label); got != tt.want {
				t.Errorf("NormalizeOverflowLabel(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestToLocalDisplay(t *testing.T) {
	// Taipei has no DST, so the offset is a stable +8.
	n := New("Asia/Taipei")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty is unsynced", "", NotSyncedLabel},
		{"sentinel is unsynced", Unsynced, NotSyncedLabel},
		{"bare timestamp assumed UTC", "2026-02-11T04:05:06", "02/11 12:05:06"},
		{"rfc3339 utc", "2026-02-11T04:05:06Z", "02/11 12:05:06"},
		{"rfc3339 with offset", "2026-02-11T12:05:06+08:00", "02/11 12:05:06"},
		{"space separated", "2026-02-11 04:05:06", "02/11 12:05:06"},
		{"crosses midnight", "2026-02-11T23:30:00", "02/12 07:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.ToLocalDisplay(tt.raw); got != tt.want {
				t.Errorf("ToLocalDisplay(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestToLocalDisplayFallback(t *testing.T) {
	n := New("Asia/Taipei")

	// Unparsable input degrades to a readable substring, never an error.
	got := n.ToLocalDisplay("2026-02-11Tnot-a-real-time-at-all")
	want := "2026-02-11 not-a-re"
	if got != want {
		t.Errorf("fallback = %q, want %q", got, want)
	}
}

func TestNewUnknownTimezoneFallsBack(t *testing.T) {
	n := New("Not/AZone")
	// The fixed UTC+8 fallback keeps display working.
	if got := n.ToLocalDisplay("2026-02-11T04:05:06"); got != "02/11 12:05:06" {
		t.Errorf("fallback zone display = %q, want %q", got, "02/11 12:05:06")
	}
}
