package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE CONFIGURATION - Statutory rates, caps, exemptions and brackets
// =============================================================================

// ContributionRate is the company/individual split of one BPJS program.
// Rates are fractions: 0.04 means 4%.
type ContributionRate struct {
	Company    decimal.Decimal `validate:"gte=0,lte=1"`
	Individual decimal.Decimal `validate:"gte=0,lte=1"`
}

// PensionCapException is a regulatory transition window during which the
// pension salary cap was lower than the standard cap. The window is keyed on
// month ordinals: it applies when year == Year and month <= ThroughMonth.
type PensionCapException struct {
	Cap          decimal.Decimal `validate:"gt=0"`
	Year         int             `validate:"gt=0"`
	ThroughMonth int             `validate:"gte=1,lte=12"`
}

// Applies reports whether the exception covers month of year.
func (e *PensionCapException) Applies(month, year int) bool {
	if e == nil || month == 0 || year == 0 {
		return false
	}
	return year == e.Year && month <= e.ThroughMonth
}

// Bracket is one tier of the progressive income tax schedule. UpTo is the
// inclusive upper bound of the tier; nil marks the unbounded top tier.
type Bracket struct {
	UpTo *decimal.Decimal
	Rate decimal.Decimal `validate:"gte=0,lte=1"`
}

// Unbounded reports whether this is the top tier.
func (b Bracket) Unbounded() bool { return b.UpTo == nil }

// BracketCount is the number of tiers the PPh21 schedule has.
const BracketCount = 4

// RateConfiguration holds every statutory parameter of a computation. It is
// loaded once, validated, and shared read-only across employees.
type RateConfiguration struct {
	Health              ContributionRate
	HealthCap           decimal.Decimal `validate:"gt=0"`
	OldAge              ContributionRate
	Pension             ContributionRate
	PensionCap          decimal.Decimal `validate:"gt=0"`
	PensionCapException *PensionCapException
	DeathRate           decimal.Decimal `validate:"gte=0,lte=1"`

	OccupationCostRate decimal.Decimal `validate:"gte=0,lte=1"`
	OccupationCostCap  decimal.Decimal `validate:"gte=0"`

	Exemptions            map[MaritalStatus]decimal.Decimal `validate:"required,dive,gte=0"`
	ExemptionPerDependent decimal.Decimal                   `validate:"gte=0"`

	Brackets []Bracket `validate:"len=4,dive"`
}

// PensionCapFor returns the pension salary cap in force for month of year.
// A zero month or year means "no calendar context" and yields the standard cap.
func (c *RateConfiguration) PensionCapFor(month, year int) decimal.Decimal {
	if c.PensionCapException.Applies(month, year) {
		return c.PensionCapException.Cap
	}
	return c.PensionCap
}

// NewBrackets builds the four-tier schedule from three thresholds and four
// rates, the shape the regulation publishes it in.
func NewBrackets(thresholds [3]decimal.Decimal, rates [4]decimal.Decimal) []Bracket {
	brackets := make([]Bracket, 0, BracketCount)
	for i, t := range thresholds {
		upTo := t
		brackets = append(brackets, Bracket{UpTo: &upTo, Rate: rates[i]})
	}
	return append(brackets, Bracket{Rate: rates[3]})
}
