package check

import (
	"testing"
	"time"
)

func TestTimespan(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{14 * 24 * time.Hour, "14 days"},
		{24 * time.Hour, "1 day"},
		{26 * time.Hour, "1 day 2 hours"},
		{2*time.Hour + 30*time.Minute, "2 hours 30 minutes"},
		{time.Hour, "1 hour"},
		{45 * time.Second, "45 seconds"},
		{90 * time.Second, "1 minute 30 seconds"},
		{0, "0 seconds"},
		{-26 * time.Hour, "1 day 2 hours"}, // magnitude only
	}
	for _, tt := range tests {
		if got := Timespan(tt.d); got != tt.want {
			t.Errorf("Timespan(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestAgo(t *testing.T) {
	if got := Ago(-2 * 24 * time.Hour); got != "2 days ago" {
		t.Errorf("Ago = %q, want %q", got, "2 days ago")
	}
}

func TestDatetime(t *testing.T) {
	in := time.Date(2026, 1, 2, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	if got := Datetime(in); got != "2026-01-02 14:04:05 UTC" {
		t.Errorf("Datetime = %q", got)
	}
}

func TestSnapshotCountsAndWorst(t *testing.T) {
	snap := Snapshot{Outcomes: []ServiceOutcome{
		{Outcome: Outcome{State: StateOK}},
		{Outcome: Outcome{State: StateWarn}},
		{Outcome: Outcome{State: StateCrit}},
		{Outcome: Outcome{State: StateOK}},
	}}
	counts := snap.Counts()
	if counts[StateOK] != 2 || counts[StateWarn] != 1 || counts[StateCrit] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if snap.WorstState() != StateCrit {
		t.Errorf("worst = %v, want CRIT", snap.WorstState())
	}
}
