package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
)

// InQuietHours reports whether now falls inside the configured window,
// comparing minutes of the day. A window whose start is later than its end
// wraps past midnight. Malformed HH:MM values disable the window.
func InQuietHours(q domain.QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, ok := clockMinutes(q.StartTime)
	if !ok {
		return false
	}
	end, ok := clockMinutes(q.EndTime)
	if !ok {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	if start > end {
		return cur >= start || cur < end
	}
	return cur >= start && cur < end
}

func clockMinutes(s string) (int, bool) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
