package notes

import (
	"fmt"
	"time"
)

// FormatUpdatedAt renders a short "time ago" label for a millisecond timestamp.
func FormatUpdatedAt(ts int64, now time.Time) string {
	mins := (now.UnixMilli() - ts) / 60000
	if mins < 1 {
		return "Just now"
	}
	if mins < 60 {
		return fmt.Sprintf("%dm ago", mins)
	}
	hrs := mins / 60
	if hrs < 24 {
		return fmt.Sprintf("%dh ago", hrs)
	}
	return fmt.Sprintf("%dd ago", hrs/24)
}
