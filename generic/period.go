package generic

import "fmt"

// =============================================================================
// PERIOD - The employment window a tax computation covers
// =============================================================================

// Period is the employment window of one payroll year, [Start, End].
//
// Tax and contributions are ALWAYS computed for a period that sits inside a
// single calendar year. The number of working months counts the months the
// window reaches, so a window from 01/06/2018 to 01/12/2018 is 7 working
// months.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Validate rejects missing dates and windows that cross a calendar year.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return &PeriodError{Start: p.Start, End: p.End, Err: ErrMissingDate}
	}
	if p.Start.Year() != p.End.Year() {
		return &PeriodError{Start: p.Start, End: p.End, Err: ErrCrossYearPeriod}
	}
	return nil
}

// WorkingMonths returns the number of whole months elapsed between the two
// dates plus one, together with the calendar year the period belongs to. A
// month only counts as elapsed once its day of month is reached:
//
//	01/03/2018 - 01/12/2018  10
//	15/03/2018 - 10/12/2018   9
//	15/03/2018 - 15/12/2018  10
//
// The dates may be given in either order.
func (p Period) WorkingMonths() (months int, year int, err error) {
	if err := p.Validate(); err != nil {
		return 0, 0, err
	}
	from, to := p.Start, p.End
	if to.Time.Before(from.Time) {
		from, to = to, from
	}
	elapsed := int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		elapsed--
	}
	return elapsed + 1, p.Start.Year(), nil
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// MONTH RANGE - Months 1..n of a working year, used by the contribution fold
// =============================================================================

// MonthRange returns the month numbers 1..n. The contribution schedule keys
// its pension-cap exception on these ordinals, not on calendar dates.
func MonthRange(n int) []int {
	if n <= 0 {
		return nil
	}
	months := make([]int, n)
	for i := range months {
		months[i] = i + 1
	}
	return months
}

// ValidateWorkingMonths checks a month count is within a single year.
func ValidateWorkingMonths(n int) error {
	if n < 1 || n > 12 {
		return fmt.Errorf("%w: working months must be in [1,12], got %d", ErrInvalidPeriod, n)
	}
	return nil
}
