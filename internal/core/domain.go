package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar day with no time-of-day component. All payload
	// dates travel as ISO "YYYY-MM-DD" strings and parse into this type.
	Date struct {
		time.Time
	}

	// Money is an exact monetary amount in integer minor units. Every
	// module that models money uses cents; there is no floating-dollar
	// representation anywhere in the persisted data.
	Money struct {
		Cents int64
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrUnknownStatus = errors.New("unknown status value")
)

// ISOLayout is the wire format for Date values.
const ISOLayout = "2006-01-02"

// ParseDate parses an ISO YYYY-MM-DD string into a Date at midnight UTC.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ISO renders the date in the wire format.
func (d Date) ISO() string {
	return d.Format(ISOLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameMonth reports whether d falls in the same calendar month and year
// as now. This is a calendar comparison, not a rolling 30-day window.
func (d Date) SameMonth(now time.Time) bool {
	return d.Year() == now.Year() && d.Month() == now.Month()
}

// SameYear reports whether d falls in the same calendar year as now.
func (d Date) SameYear(now time.Time) bool {
	return d.Year() == now.Year()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// RequireName validates a mandatory display name field.
func RequireName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}

// ValidStatus reports whether status belongs to a closed status set.
// Status enumerations are closed; unknown values are rejected at write time.
func ValidStatus(status string, allowed []string) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
