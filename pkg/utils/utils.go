package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// Date returns the calendar date of t as observed in loc, normalized to
// midnight UTC. All date arithmetic in the engine works on these values.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CivilDate drops the time-of-day and location of a stored date value.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns to - from in whole calendar days. Negative when to is
// before from.
func DaysBetween(from, to time.Time) int {
	return int(CivilDate(to).Sub(CivilDate(from)).Hours() / 24)
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddMonthsClamped adds calendar months, clamping the day to the last valid
// day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(date time.Time, months int) time.Time {
	date = CivilDate(date)
	first := time.Date(date.Year(), date.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	day := date.Day()
	if last := DaysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the month containing date.
func DaysInMonth(date time.Time) int {
	return time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LoadLocationOr resolves an IANA zone name, falling back when the name is
// empty or unknown.
func LoadLocationOr(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}

// FormatAmount renders a decimal amount with two fraction digits and
// thousands separators.
func FormatAmount(symbol string, amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]

	var out []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + symbol + string(out) + frac
}
