package session

import "fmt"

// FormatClock renders seconds as m:ss. Negative values render as 0:00.
func FormatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatDuration renders seconds in a compact human form: 45s, 1m 30s, 2m, 1h 5m.
func FormatDuration(seconds int) string {
	seconds = max(seconds, 0)
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
