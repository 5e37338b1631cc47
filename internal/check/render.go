package check

import (
	"fmt"
	"strings"
	"time"
)

// Datetime renders an absolute timestamp. The format is fixed so the
// check details stay golden-testable.
func Datetime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// Timespan renders a duration using its two most significant units,
// e.g. "14 days", "2 hours 30 minutes", "45 seconds". Negative input
// is rendered by magnitude; callers add direction wording.
func Timespan(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	units := []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
		{time.Second, "second"},
	}

	var parts []string
	for _, u := range units {
		if len(parts) == 2 {
			break
		}
		n := d / u.size
		d -= n * u.size
		if n == 0 && len(parts) == 0 {
			continue
		}
		parts = append(parts, plural(int(n), u.name))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	// Trailing zero unit adds nothing ("2 hours 0 minutes").
	if len(parts) == 2 && strings.HasPrefix(parts[1], "0 ") {
		parts = parts[:1]
	}
	return strings.Join(parts, " ")
}

// Ago renders a duration magnitude with an "ago" suffix, used for
// already-expired credentials and sync staleness.
func Ago(d time.Duration) string {
	return Timespan(d) + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
