package derive

import (
	"fmt"
	"sort"
	"time"
)

// DaysUntil returns the number of whole calendar days from now to target,
// comparing both at midnight so time-of-day is irrelevant. Zero means the
// target is today; negative means it is in the past. Callers must render
// zero ("Today") and negative (overdue) distinctly.
func DaysUntil(target, now time.Time) int {
	t := midnight(target)
	n := midnight(now)
	return int(t.Sub(n) / (24 * time.Hour))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CountdownLabel renders a day distance for display: "Today" at exactly
// zero, "In N days" for the future, "N days ago" for the past.
func CountdownLabel(days int) string {
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "In 1 day"
	case days > 1:
		return fmt.Sprintf("In %d days", days)
	case days == -1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

// LowStock reports whether quantity has fallen below the minimum. The
// inequality is strict: a quantity equal to the minimum is not low.
func LowStock(quantity, minQuantity int64) bool {
	return quantity < minQuantity
}

// SortByISODate stably sorts items by an ISO date string key. Lexicographic
// order over well-formed YYYY-MM-DD strings is chronological; malformed
// dates sort unpredictably, which is a documented limitation.
func SortByISODate[T any](items []T, date func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return date(items[i]) < date(items[j])
	})
}
