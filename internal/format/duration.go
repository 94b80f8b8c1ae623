package format

import (
	"fmt"
	"time"
)

// FormatDuration renders the whole minutes elapsed between start and
// reference as "{d}d {h}h", "{h}h {m}m" or "{m}m", using the largest unit
// present. Seconds are truncated.
//
// A zero start time or a reference before start (exit before entry, clock
// skew) renders as "0m" rather than a negative duration.
func FormatDuration(start, reference time.Time) string {
	if start.IsZero() || reference.Before(start) {
		return "0m"
	}

	minutes := int64(reference.Sub(start) / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatSince renders the duration from start until now.
func FormatSince(start time.Time) string {
	return FormatDuration(start, time.Now())
}
