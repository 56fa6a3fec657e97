// This file implements the Strategy Pattern for renewal cadences. Each
// cadence (daily, weekly, monthly, yearly) has its own strategy that
// computes the next occurrence of a recurring obligation on or after a
// reference day, so upcoming-renewal views stay pure calendar arithmetic.
package derive

import (
	"fmt"
	"time"
)

// Cadence is how often a renewal recurs.
type Cadence string

const (
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
	Yearly  Cadence = "yearly"
)

// OccurrenceFinder is the strategy interface for one cadence. Next returns
// the first occurrence on or after now of a series anchored at start.
type OccurrenceFinder interface {
	Next(start, now time.Time) time.Time
}

type dailyFinder struct{}

func (dailyFinder) Next(start, now time.Time) time.Time {
	s, n := midnight(start), midnight(now)
	if n.Before(s) {
		return s
	}
	return n
}

type weeklyFinder struct{}

func (weeklyFinder) Next(start, now time.Time) time.Time {
	s, n := midnight(start), midnight(now)
	if n.Before(s) {
		return s
	}
	days := int(n.Sub(s) / (24 * time.Hour))
	weeks := days / 7
	next := s.AddDate(0, 0, weeks*7)
	if next.Before(n) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

type monthlyFinder struct{}

func (monthlyFinder) Next(start, now time.Time) time.Time {
	s, n := midnight(start), midnight(now)
	if n.Before(s) {
		return s
	}
	next := onDayOfMonth(n.Year(), n.Month(), s.Day())
	if next.Before(n) {
		y, m := n.Year(), n.Month()+1
		next = onDayOfMonth(y, m, s.Day())
	}
	return next
}

type yearlyFinder struct{}

func (yearlyFinder) Next(start, now time.Time) time.Time {
	s, n := midnight(start), midnight(now)
	if n.Before(s) {
		return s
	}
	next := onDayOfMonth(n.Year(), s.Month(), s.Day())
	if next.Before(n) {
		next = onDayOfMonth(n.Year()+1, s.Month(), s.Day())
	}
	return next
}

// onDayOfMonth clamps the target day to the month's last day, so a series
// anchored on the 31st lands on the 30th (or 28th/29th) in shorter months.
func onDayOfMonth(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

var cadenceStrategies = map[Cadence]OccurrenceFinder{
	Daily:   dailyFinder{},
	Weekly:  weeklyFinder{},
	Monthly: monthlyFinder{},
	Yearly:  yearlyFinder{},
}

// NextOccurrence computes the next occurrence on or after now for the
// given cadence anchored at start. Unknown cadences are an error.
func NextOccurrence(c Cadence, start, now time.Time) (time.Time, error) {
	finder, ok := cadenceStrategies[c]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown cadence: %s", c)
	}
	return finder.Next(start, now), nil
}

// ValidCadence reports whether c is a supported cadence.
func ValidCadence(c Cadence) bool {
	_, ok := cadenceStrategies[c]
	return ok
}
