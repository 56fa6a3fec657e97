package derive

import "math"

// Sum adds the extracted value over all items. Summing an empty slice
// yields 0.
func Sum[T any](items []T, f func(T) int64) int64 {
	var total int64
	for _, it := range items {
		total += f(it)
	}
	return total
}

// Coalesce turns an optional numeric field into its summable value:
// absent means zero.
func Coalesce(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// Percent computes round(100*actual/target). A zero or negative target
// yields 0 rather than a division error; the result is NOT clamped, so
// an over-target actual produces a value above 100.
func Percent(actual, target int64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(actual) / float64(target)))
}

// BarWidth clamps a percentage into [0, 100] for progress-bar rendering.
// The displayed percentage text stays unclamped; only the bar fill is.
func BarWidth(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Progress bundles the derived values a percentage-of-target display
// needs. Remaining is target-actual and goes negative when over target,
// never floored at zero.
type Progress struct {
	Actual    int64 `json:"actual"`
	Target    int64 `json:"target"`
	Percent   int   `json:"percent"`
	BarWidth  int   `json:"bar_width"`
	Remaining int64 `json:"remaining"`
}

// ProgressOf derives a Progress for actual against target.
func ProgressOf(actual, target int64) Progress {
	pct := Percent(actual, target)
	return Progress{
		Actual:    actual,
		Target:    target,
		Percent:   pct,
		BarWidth:  BarWidth(pct),
		Remaining: target - actual,
	}
}
