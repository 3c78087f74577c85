/*
calculator.go - Per-month BPJS contribution calculator

PURPOSE:
  Computes the contribution of each BPJS program from a monthly salary base
  and the rate configuration. Every function is pure.

FORMULAS:
  Health:   min(base, health_cap) * rate      (company and individual)
  Old-age:  base * rate                       (uncapped, company and individual)
  Pension:  min(base, pension_cap) * rate     (company and individual)
  Death:    floor(base * rate)                (company, whole rupiah)
  Accident: round(base * risk / 100, 1)       (company, one decimal place)

PENSION CAP TRANSITION:
  The pension cap was raised in March 2018. For months 1-2 of that year the
  lower cap still applies. The configuration carries the window as
  (year, through-month); see payroll.PensionCapException.

  calc.Pension(8500000, 2, 2018) // capped at 7,703,500
  calc.Pension(8500000, 3, 2018) // capped at 8,094,000

RISK RATE:
  The industry risk rate is a percentage (0.24 means 0.24%), unlike every
  other rate which is already a fraction. It is divided by 100 here.

SEE ALSO:
  - schedule.go: Folds monthly contributions into an annual aggregate
  - payroll/rates.go: Rate configuration
*/
package bpjs

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
)

// Calculator computes single-month contributions for a rate configuration.
type Calculator struct {
	Config *payroll.RateConfiguration
}

func NewCalculator(cfg *payroll.RateConfiguration) *Calculator {
	return &Calculator{Config: cfg}
}

// Compute dispatches on the program type. month and year locate the
// computation in the calendar for the pension cap transition; pass zero for
// both when there is no calendar context.
func (c *Calculator) Compute(t Type, base, industryRisk decimal.Decimal, month, year int) Contribution {
	switch t {
	case OldAge:
		return c.OldAge(base)
	case Pension:
		return c.Pension(base, month, year)
	case Health:
		return c.Health(base)
	case Death:
		return Contribution{Company: c.Death(base), Individual: decimal.Zero}
	case Accident:
		return Contribution{Company: c.Accident(base, industryRisk), Individual: decimal.Zero}
	default:
		return Contribution{Company: decimal.Zero, Individual: decimal.Zero}
	}
}

// Health caps the base, not the output.
func (c *Calculator) Health(base decimal.Decimal) Contribution {
	capped := generic.CapAt(base, c.Config.HealthCap)
	return Contribution{
		Company:    capped.Mul(c.Config.Health.Company),
		Individual: capped.Mul(c.Config.Health.Individual),
	}
}

func (c *Calculator) OldAge(base decimal.Decimal) Contribution {
	return Contribution{
		Company:    base.Mul(c.Config.OldAge.Company),
		Individual: base.Mul(c.Config.OldAge.Individual),
	}
}

func (c *Calculator) Pension(base decimal.Decimal, month, year int) Contribution {
	capped := generic.CapAt(base, c.Config.PensionCapFor(month, year))
	return Contribution{
		Company:    capped.Mul(c.Config.Pension.Company),
		Individual: capped.Mul(c.Config.Pension.Individual),
	}
}

// Death is truncated to whole currency units.
func (c *Calculator) Death(base decimal.Decimal) decimal.Decimal {
	return base.Mul(c.Config.DeathRate).Floor()
}

// Accident rounds half-to-even at one decimal place.
func (c *Calculator) Accident(base, industryRisk decimal.Decimal) decimal.Decimal {
	return base.Mul(generic.FromPercent(industryRisk)).RoundBank(1)
}

// =============================================================================
// PROFILE ENTRY POINT
// =============================================================================

// MonthlyContributions computes one month of contributions for a profile,
// honoring its enrollment flags. There is no calendar context, so the
// standard pension cap applies. An invalid configuration is rejected.
func MonthlyContributions(profile payroll.Profile, cfg *payroll.RateConfiguration) (MonthlyContribution, error) {
	if err := cfg.Validate(); err != nil {
		return MonthlyContribution{}, err
	}
	calc := NewCalculator(cfg)
	return calc.month(profile.ContributionBase(), profile.IndustryRiskRate, profile.Enrollment, 0, 0), nil
}

// month computes every enrolled program for one month.
func (c *Calculator) month(base, industryRisk decimal.Decimal, enrollment payroll.Enrollment, month, year int) MonthlyContribution {
	mc := MonthlyContribution{Month: month, Breakdown: zeroBreakdown()}
	for _, t := range Types {
		if !t.Enrolled(enrollment) {
			continue
		}
		mc.Breakdown = mc.Breakdown.With(t, c.Compute(t, base, industryRisk, month, year))
	}
	return mc
}

func zeroBreakdown() Breakdown {
	var b Breakdown
	for _, t := range Types {
		b = b.With(t, Contribution{Company: decimal.Zero, Individual: decimal.Zero})
	}
	return b
}
