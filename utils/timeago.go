package utils

import (
	"fmt"
	"time"
)

// FormatTimeAgo renders a stored timestamp relative to now, the way the
// notification history displays it.
func FormatTimeAgo(createdAt time.Time) string {
	return formatTimeAgoAt(createdAt, time.Now())
}

func formatTimeAgoAt(createdAt, now time.Time) string {
	d := now.Sub(createdAt)

	minutes := int64(d.Minutes())
	hours := int64(d.Hours())
	days := int64(d.Hours() / 24)

	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%d minutes ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}
