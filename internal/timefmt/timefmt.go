// Package timefmt renders timestamps for assessment listings.
package timefmt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// Layout is the display layout for absolute timestamps.
const Layout = "Jan 2, 2006, 3:04 PM"

// InvalidDate is returned for input that cannot be parsed.
const InvalidDate = "Invalid date"

// Parse reads an ISO-8601 timestamp or a plain YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if dt, err := strfmt.ParseDateTime(s); err == nil {
		return time.Time(dt), nil
	}
	t, err := time.Parse(strfmt.RFC3339FullDate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatDateTime formats s in the local time zone.
func FormatDateTime(s string) string {
	return FormatDateTimeIn(s, time.Local)
}

// FormatDateTimeIn formats s in loc, or returns InvalidDate.
func FormatDateTimeIn(s string, loc *time.Location) string {
	t, err := Parse(s)
	if err != nil {
		return InvalidDate
	}
	return t.In(loc).Format(Layout)
}

// RelativeTime describes t relative to now ("Just now", "5 minutes ago",
// "Yesterday"). Anything a week or older is formatted absolutely.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	}

	days := int(d / (24 * time.Hour))
	switch {
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.In(now.Location()).Format(Layout)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
