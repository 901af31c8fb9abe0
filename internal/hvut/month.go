package hvut

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Month is a position in the tax year: 0 is July, 11 is June.
type Month int

// MonthsPerYear is the length of the tax year.
const MonthsPerYear = 12

// Tax-year months.
const (
	July Month = iota
	August
	September
	October
	November
	December
	January
	February
	March
	April
	May
	June
)

var monthNames = [MonthsPerYear]string{
	"July", "August", "September", "October", "November", "December",
	"January", "February", "March", "April", "May", "June",
}

var monthLookup = func() map[string]Month {
	m := make(map[string]Month, 2*MonthsPerYear)
	for i, name := range monthNames {
		lower := strings.ToLower(name)
		m[lower] = Month(i)
		m[lower[:3]] = Month(i)
	}
	return m
}()

// ParseMonth resolves a month name ("January", "jan") to its tax-year position.
func ParseMonth(name string) (Month, bool) {
	m, ok := monthLookup[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// String returns the English month name.
func (m Month) String() string {
	if m < 0 || int(m) >= MonthsPerYear {
		return ""
	}
	return monthNames[m]
}

// Remaining is the number of tax-year months from m through June inclusive.
func (m Month) Remaining() int {
	return MonthsPerYear - int(m)
}

// MonthOf maps a calendar date to its tax-year month.
func MonthOf(t time.Time) Month {
	return Month((int(t.Month()) - int(time.July) + MonthsPerYear) % MonthsPerYear)
}

// TaxYearOf returns the tax year a date falls in, named for the calendar
// year in which that tax year's July falls.
func TaxYearOf(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year()
	}
	return t.Year() - 1
}

// ProratedTax returns the share of an annual amount owed for a vehicle
// first used in firstUsedMonth. July and unrecognized months owe the full
// amount.
func ProratedTax(annual decimal.Decimal, firstUsedMonth string) decimal.Decimal {
	m, ok := ParseMonth(firstUsedMonth)
	if !ok || m == July {
		return Round(annual)
	}
	return Round(annual.Mul(decimal.NewFromInt(int64(m.Remaining()))).Div(decimal.NewFromInt(MonthsPerYear)))
}
