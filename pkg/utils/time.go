package utils

import (
	"fmt"
	"time"
)

// FormatDuration renders d compactly for logs and status payloads
// (2h03m, 4m10s, 1.50s, 250ms).
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", d/time.Hour, (d%time.Hour)/time.Minute)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", d/time.Minute, (d%time.Minute)/time.Second)
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// ParseDurationSafe parses s as a duration, falling back to def when s
// is empty, malformed or not positive.
func ParseDurationSafe(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
