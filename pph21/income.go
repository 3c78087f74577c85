/*
income.go - Annual gross, net and taxable income

PURPOSE:
  Derives the taxable income of an employee for one working year from the
  compensation profile and the year's BPJS aggregate.

DERIVATION:
  gross   = base salary x months
          + non-fixed allowances x months
          + overtime
          + company death + accident contributions
          + company health contribution
          + bonus

  net     = gross
          - occupation cost on (gross - bonus), capped
          - occupation cost on bonus, capped separately
          - individual pension contribution
          - individual old-age contribution

  taxable = max(0, net - exemption), truncated to a multiple of 1000

  Company death, accident and health contributions are benefits in kind and
  therefore income. Only the individual pension and old-age shares reduce it.

EXAMPLE (8,000,000/month, SINGLE, all programs, 12 months of 2018):
  gross   = 96,000,000 + 288,000 + 230,400 + 3,840,000 = 100,358,400
  net     = 100,358,400 - 5,017,920 - 954,070 - 1,920,000 = 92,466,410
  taxable = 92,466,410 - 54,000,000 = 38,466,410 -> 38,466,000

SEE ALSO:
  - brackets.go: Tax on the taxable income
  - reconcile.go: Orchestrates the derivation
*/
package pph21

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/bpjs"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
)

// =============================================================================
// INCOME BREAKDOWNS
// =============================================================================

// GrossIncome itemizes the annual gross (bruto) income.
type GrossIncome struct {
	AnnualSalary     decimal.Decimal `json:"annual_salary"`
	AnnualAllowances decimal.Decimal `json:"annual_allowances"`
	Overtime         decimal.Decimal `json:"overtime"`
	WorkInsurance    decimal.Decimal `json:"annual_bpjs_work"`
	HealthInsurance  decimal.Decimal `json:"annual_bpjs_health"`
	Bonus            decimal.Decimal `json:"bonus"`
	Total            decimal.Decimal `json:"annual_bruto_income"`
}

// ExcludingBonus is the regular income the occupation cost is computed on.
func (g GrossIncome) ExcludingBonus() decimal.Decimal {
	return g.Total.Sub(g.Bonus)
}

// NetIncome itemizes the deductions from gross to net income.
type NetIncome struct {
	OccupationCost      decimal.Decimal `json:"occupation_support"`
	BonusOccupationCost decimal.Decimal `json:"thr_occupation_support"`
	PensionInsurance    decimal.Decimal `json:"bpjs_pension_insurance"`
	OldAgeInsurance     decimal.Decimal `json:"bpjs_old_age_insurance"`
	Total               decimal.Decimal `json:"annual_net_income"`
}

// =============================================================================
// DERIVER
// =============================================================================

// Deriver turns a profile and its contribution aggregate into taxable income.
type Deriver struct {
	Config *payroll.RateConfiguration
}

func NewDeriver(cfg *payroll.RateConfiguration) *Deriver {
	return &Deriver{Config: cfg}
}

// Gross computes the annual gross income over months working months.
// The bonus is passed separately so the same profile can be evaluated with
// and without it.
func (d *Deriver) Gross(p payroll.Profile, bonus decimal.Decimal, agg bpjs.AnnualAggregate, months int) GrossIncome {
	m := decimal.NewFromInt(int64(months))
	g := GrossIncome{
		AnnualSalary:     p.BaseSalary.Mul(m),
		AnnualAllowances: p.NonFixedAllowanceTotal().Mul(m),
		Overtime:         p.Overtime,
		WorkInsurance:    agg.Death.Company.Add(agg.Accident.Company),
		HealthInsurance:  agg.Health.Company,
		Bonus:            bonus,
	}
	g.Total = generic.Sum(g.AnnualSalary, g.AnnualAllowances, g.Overtime, g.WorkInsurance, g.HealthInsurance, g.Bonus)
	return g
}

// Net deducts occupation costs and the employee's own pension and old-age
// contributions from gross.
func (d *Deriver) Net(g GrossIncome, agg bpjs.AnnualAggregate) NetIncome {
	n := NetIncome{
		OccupationCost:      d.OccupationCost(g.ExcludingBonus()),
		BonusOccupationCost: d.OccupationCost(g.Bonus),
		PensionInsurance:    agg.Pension.Individual,
		OldAgeInsurance:     agg.OldAge.Individual,
	}
	n.Total = g.Total.Sub(generic.Sum(n.OccupationCost, n.BonusOccupationCost, n.PensionInsurance, n.OldAgeInsurance))
	return n
}

// OccupationCost is amount x rate, capped.
func (d *Deriver) OccupationCost(amount decimal.Decimal) decimal.Decimal {
	return generic.CapAt(amount.Mul(d.Config.OccupationCostRate), d.Config.OccupationCostCap)
}

// Exemption is the non-taxable income (PTKP) for a marital status and
// dependent count. Dependents beyond three are not counted. A status with
// no configured exemption gets none.
func (d *Deriver) Exemption(status payroll.MaritalStatus, dependents int) decimal.Decimal {
	base, ok := d.Config.Exemptions[status]
	if !ok {
		return decimal.Zero
	}
	if dependents > payroll.MaxDependents {
		dependents = payroll.MaxDependents
	}
	if dependents < 0 {
		dependents = 0
	}
	return base.Add(d.Config.ExemptionPerDependent.Mul(decimal.NewFromInt(int64(dependents))))
}

// TaxableIncome is net income above the exemption, truncated to thousands.
func (d *Deriver) TaxableIncome(net, exemption decimal.Decimal) decimal.Decimal {
	return generic.TruncateTo(generic.FloorAtZero(net.Sub(exemption)), generic.Thousand)
}
