package hvut

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Schedule versions. The two published tables agree on A through T and
// differ on whether U already pays the capped amount.
const (
	// ScheduleCapAtU caps U, V and W at the maximum annual tax.
	ScheduleCapAtU = "2290-cap-u"

	// ScheduleCapAtV keeps U on the per-1,000 lb formula and caps V and W.
	ScheduleCapAtV = "2290-cap-v"

	// DefaultSchedule is the schedule used when none is configured.
	DefaultSchedule = ScheduleCapAtU
)

// Schedule holds the parameters a Table is built from.
type Schedule struct {
	Version     string
	Base        decimal.Decimal // annual tax for category A
	Step        decimal.Decimal // added per 1,000 lb bracket
	Cap         decimal.Decimal // maximum annual tax
	CapIndex    int             // first bracket index that pays Cap
	ReducedRate decimal.Decimal // multiplier for logging vehicles
}

// Table is an immutable annual-tax lookup for one schedule version.
// It is safe for concurrent use.
type Table struct {
	version     string
	standard    []decimal.Decimal
	reduced     []decimal.Decimal
	reducedRate decimal.Decimal
}

var schedules = map[string]Schedule{
	ScheduleCapAtU: {
		Version:     ScheduleCapAtU,
		Base:        decimal.NewFromInt(100),
		Step:        decimal.NewFromInt(22),
		Cap:         decimal.NewFromInt(550),
		CapIndex:    20,
		ReducedRate: decimal.RequireFromString("0.75"),
	},
	ScheduleCapAtV: {
		Version:     ScheduleCapAtV,
		Base:        decimal.NewFromInt(100),
		Step:        decimal.NewFromInt(22),
		Cap:         decimal.NewFromInt(550),
		CapIndex:    21,
		ReducedRate: decimal.RequireFromString("0.75"),
	},
}

var tables = func() map[string]*Table {
	m := make(map[string]*Table, len(schedules))
	for v, s := range schedules {
		m[v] = NewTable(s)
	}
	return m
}()

// NewTable precomputes the standard and reduced amount of every category.
func NewTable(s Schedule) *Table {
	t := &Table{
		version:     s.Version,
		standard:    make([]decimal.Decimal, len(Categories)),
		reduced:     make([]decimal.Decimal, len(Categories)),
		reducedRate: s.ReducedRate,
	}
	for i := range Categories {
		amount := s.Cap
		if i < s.CapIndex {
			amount = s.Base.Add(s.Step.Mul(decimal.NewFromInt(int64(i))))
			if amount.GreaterThan(s.Cap) {
				amount = s.Cap
			}
		}
		t.standard[i] = Round(amount)
		t.reduced[i] = Round(amount.Mul(s.ReducedRate))
	}
	return t
}

// LookupTable returns the table for a schedule version.
func LookupTable(version string) (*Table, error) {
	t, ok := tables[version]
	if !ok {
		return nil, fmt.Errorf("hvut: unknown tax schedule %q (known: %v)", version, Versions())
	}
	return t, nil
}

// DefaultTable returns the table for DefaultSchedule.
func DefaultTable() *Table {
	return tables[DefaultSchedule]
}

// Versions lists the known schedule versions in sorted order.
func Versions() []string {
	out := make([]string, 0, len(schedules))
	for v := range schedules {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Version returns the schedule version the table was built from.
func (t *Table) Version() string {
	return t.version
}

// AnnualTax returns the full-year tax for a weight category. Logging
// vehicles pay the reduced rate. Unknown or empty categories owe nothing.
func (t *Table) AnnualTax(category string, isLoggingVehicle bool) decimal.Decimal {
	c, ok := ParseWeightCategory(category)
	if !ok {
		return decimal.Zero
	}
	i, _ := c.Index()
	if isLoggingVehicle {
		return t.reduced[i]
	}
	return t.standard[i]
}

// VehicleTax returns what one vehicle owes for the tax year. The same
// amount is used for credits and refunds; callers apply the sign.
func (t *Table) VehicleTax(category string, isSuspended bool, firstUsedMonth string, isLoggingVehicle bool) decimal.Decimal {
	if isSuspended || category == "" {
		return decimal.Zero
	}
	return ProratedTax(t.AnnualTax(category, isLoggingVehicle), firstUsedMonth)
}
