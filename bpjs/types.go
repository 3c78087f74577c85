// Package bpjs computes Indonesian social-insurance (BPJS) contributions.
// It implements the per-month contribution calculator and the schedule that
// folds monthly contributions into an annual aggregate.
package bpjs

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/payroll"
)

// =============================================================================
// CONTRIBUTION TYPE - Closed set of BPJS programs
// =============================================================================

// Type is one BPJS program.
type Type string

const (
	OldAge   Type = "old_age"  // Jaminan Hari Tua
	Pension  Type = "pension"  // Jaminan Pensiun
	Health   Type = "health"   // BPJS Kesehatan
	Death    Type = "death"    // Jaminan Kematian
	Accident Type = "accident" // Jaminan Kecelakaan Kerja
)

// Types lists every program in reporting order.
var Types = []Type{OldAge, Pension, Health, Death, Accident}

// Enrolled reports whether the enrollment flags include this program.
func (t Type) Enrolled(e payroll.Enrollment) bool {
	switch t {
	case OldAge:
		return e.OldAge
	case Pension:
		return e.Pension
	case Health:
		return e.Health
	case Death:
		return e.Death
	case Accident:
		return e.Accident
	default:
		return false
	}
}

// SharedWithEmployee is true for programs with an individual portion.
// Death and accident insurance are paid by the company only.
func (t Type) SharedWithEmployee() bool {
	return t == OldAge || t == Pension || t == Health
}

// =============================================================================
// CONTRIBUTION - Company and individual portions of one program
// =============================================================================

type Contribution struct {
	Company    decimal.Decimal `json:"company"`
	Individual decimal.Decimal `json:"individual"`
}

func (c Contribution) Add(o Contribution) Contribution {
	return Contribution{Company: c.Company.Add(o.Company), Individual: c.Individual.Add(o.Individual)}
}

func (c Contribution) Total() decimal.Decimal { return c.Company.Add(c.Individual) }
func (c Contribution) IsZero() bool           { return c.Company.IsZero() && c.Individual.IsZero() }

// =============================================================================
// BREAKDOWN - One Contribution per program
// =============================================================================

// Breakdown holds a contribution for each program. It is the shared shape of
// monthly and annual figures.
type Breakdown struct {
	OldAge   Contribution `json:"old_age_insurance"`
	Pension  Contribution `json:"pension_insurance"`
	Health   Contribution `json:"health_insurance"`
	Death    Contribution `json:"death_insurance"`
	Accident Contribution `json:"accident_insurance"`
}

// Get returns the contribution of program t.
func (b Breakdown) Get(t Type) Contribution {
	switch t {
	case OldAge:
		return b.OldAge
	case Pension:
		return b.Pension
	case Health:
		return b.Health
	case Death:
		return b.Death
	case Accident:
		return b.Accident
	default:
		return Contribution{}
	}
}

// With returns a copy of b with program t set to c.
func (b Breakdown) With(t Type, c Contribution) Breakdown {
	switch t {
	case OldAge:
		b.OldAge = c
	case Pension:
		b.Pension = c
	case Health:
		b.Health = c
	case Death:
		b.Death = c
	case Accident:
		b.Accident = c
	}
	return b
}

// Add sums two breakdowns program by program.
func (b Breakdown) Add(o Breakdown) Breakdown {
	for _, t := range Types {
		b = b.With(t, b.Get(t).Add(o.Get(t)))
	}
	return b
}

// IndividualTotal is what the employee pays across all programs.
func (b Breakdown) IndividualTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range Types {
		total = total.Add(b.Get(t).Individual)
	}
	return total
}

// CompanyTotal is what the employer pays across all programs.
func (b Breakdown) CompanyTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range Types {
		total = total.Add(b.Get(t).Company)
	}
	return total
}

// =============================================================================
// MONTHLY AND ANNUAL FIGURES
// =============================================================================

// MonthlyContribution is the contribution for one month. Month is the
// ordinal within the working year (1..12), or 0 when computed without a
// calendar context.
type MonthlyContribution struct {
	Month int `json:"month"`
	Breakdown
}

// AnnualAggregate sums the monthly contributions of a working year.
type AnnualAggregate struct {
	WorkingMonths int `json:"working_months"`
	Year          int `json:"year"`
	Breakdown
}
