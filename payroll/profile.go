// Package payroll defines the inputs of a payroll tax computation: the
// employee's compensation profile and the statutory rate configuration.
// Both are plain values, validated once and then shared read-only.
package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
)

// =============================================================================
// ENUMS
// =============================================================================

// MaritalStatus selects the base tax exemption (PTKP) of an employee.
type MaritalStatus string

const (
	Single               MaritalStatus = "SINGLE"
	Married              MaritalStatus = "MARRIED"
	MarriedWorkingSpouse MaritalStatus = "MARRIED_WORKING_SPOUSE"
)

// ParseMaritalStatus maps external spellings onto MaritalStatus. The legacy
// "MARRIED_CI" code is accepted for MarriedWorkingSpouse. Unknown values are
// passed through unchanged: they are legal and simply earn no exemption.
func ParseMaritalStatus(s string) MaritalStatus {
	switch s {
	case "MARRIED_CI":
		return MarriedWorkingSpouse
	default:
		return MaritalStatus(s)
	}
}

// TaxMethod says who bears the income tax.
type TaxMethod string

const (
	// TaxGross: tax is withheld from the employee's salary.
	TaxGross TaxMethod = "GROSS"
	// TaxNett: the employer bears the tax; take-home pay is the full salary.
	TaxNett TaxMethod = "NETT"
)

// MaxDependents is the number of dependents the exemption counts at most.
const MaxDependents = 3

// =============================================================================
// ENROLLMENT - Which BPJS programs the employee participates in
// =============================================================================

type Enrollment struct {
	OldAge   bool `yaml:"old_age" json:"old_age"`
	Pension  bool `yaml:"pension" json:"pension"`
	Health   bool `yaml:"health" json:"health"`
	Death    bool `yaml:"death" json:"death"`
	Accident bool `yaml:"accident" json:"accident"`
}

// EnrollAll enrolls the employee in every program.
func EnrollAll() Enrollment {
	return Enrollment{OldAge: true, Pension: true, Health: true, Death: true, Accident: true}
}

// =============================================================================
// PROFILE - One employee's compensation for one payroll year
// =============================================================================

// Profile is the compensation structure of an employee for one computation.
// It is immutable for the duration of a run.
type Profile struct {
	EmployeeID string

	BaseSalary         decimal.Decimal            `validate:"gte=0"`
	FixedAllowances    map[string]decimal.Decimal `validate:"dive,gte=0"`
	NonFixedAllowances map[string]decimal.Decimal `validate:"dive,gte=0"`
	Overtime           decimal.Decimal            `validate:"gte=0"`
	Bonus              decimal.Decimal            `validate:"gte=0"`

	// IncludeAllowancesInBase adds fixed and non-fixed allowances to the
	// contribution base. When false, contributions use BaseSalary only.
	IncludeAllowancesInBase bool

	TaxMethod     TaxMethod `validate:"oneof=GROSS NETT"`
	HasTaxpayerID bool
	MaritalStatus MaritalStatus
	Dependents    int `validate:"gte=0"`

	StartDate generic.TimePoint
	EndDate   generic.TimePoint

	Enrollment Enrollment

	// IndustryRiskRate is a percentage: 0.24 means 0.24% of the base.
	IndustryRiskRate decimal.Decimal `validate:"gte=0,lte=100"`
}

// FixedAllowanceTotal sums the fixed allowances.
func (p Profile) FixedAllowanceTotal() decimal.Decimal {
	return sumAllowances(p.FixedAllowances)
}

// NonFixedAllowanceTotal sums the non-fixed allowances.
func (p Profile) NonFixedAllowanceTotal() decimal.Decimal {
	return sumAllowances(p.NonFixedAllowances)
}

// ContributionBase is the monthly salary BPJS contributions are computed on.
func (p Profile) ContributionBase() decimal.Decimal {
	if !p.IncludeAllowancesInBase {
		return p.BaseSalary
	}
	return generic.Sum(p.BaseSalary, p.FixedAllowanceTotal(), p.NonFixedAllowanceTotal())
}

// EffectiveDependents is the dependent count used by exemption math.
func (p Profile) EffectiveDependents() int {
	if p.Dependents > MaxDependents {
		return MaxDependents
	}
	return p.Dependents
}

// Period returns the employment window of the profile.
func (p Profile) Period() generic.Period {
	return generic.Period{Start: p.StartDate, End: p.EndDate}
}

// WithBonus returns a copy of the profile carrying a different bonus.
func (p Profile) WithBonus(bonus decimal.Decimal) Profile {
	p.Bonus = bonus
	return p
}

func sumAllowances(allowances map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range allowances {
		total = total.Add(v)
	}
	return total
}
