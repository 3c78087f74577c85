/*
reconcile.go - Period reconciliation of the annual PPh21 tax

PURPOSE:
  Payroll runs monthly, but PPh21 is an annual tax. Every cycle recomputes the
  annual tax for the employment window and turns it into a monthly
  withholding. Two carries thread state between cycles:

    firstCycleTax:    the annual tax computed in the first cycle of the year.
                      Keeps the monthly baseline stable across cycles.
    previousCycleTax: the annual tax computed in the previous cycle. Any
                      change against it (e.g. a bonus) is withheld in full
                      in the current cycle.

  The reconciler is stateless; the caller threads the carries (see batch/).

ALGORITHM:
  1. months, year = working months of the employment window
  2. annual = tax without bonus
  3. baseline = (first > 0 ? first : annual.AnnualTax) / months, truncated
  4. if previous > 0:
       if bonus > 0: annual = tax with bonus
       adjustment = annual.AnnualTax - previous
  5. deduction.MonthlyTax = baseline + adjustment
     deduction.{OldAge,Pension,Health} = individual annual / months, truncated

EXAMPLE:
  r := NewReconciler(cfg)
  first, _, _ := r.Calculate(profile, zero, zero)             // 1,923,300
  withBonus := profile.WithBonus(decimal.NewFromInt(8000000))
  _, ded, _ := r.Calculate(withBonus, first.AnnualTax, first.AnnualTax)
  // ded.MonthlyTax = 160,275 + (2,303,300 - 1,923,300) = 540,275

SEE ALSO:
  - income.go: Gross, net and taxable income
  - brackets.go: Progressive schedule
  - bpjs/schedule.go: Contribution aggregate
*/
package pph21

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/bpjs"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
)

// =============================================================================
// RESULTS
// =============================================================================

// Result is the full annual computation of one cycle.
type Result struct {
	WorkingMonths int                  `json:"working_months"`
	Year          int                  `json:"year"`
	Gross         GrossIncome          `json:"total_income_result"`
	Net           NetIncome            `json:"net_income_result"`
	Exemption     decimal.Decimal      `json:"tax_exemption"`
	TaxableIncome decimal.Decimal      `json:"annual_taxable_income"`
	Surcharge     decimal.Decimal      `json:"additional_charge"`
	AnnualTax     decimal.Decimal      `json:"annual_tax"`
	Contributions bpjs.AnnualAggregate `json:"annual_bpjs"`
}

// Deduction is what is withheld from the employee this month.
type Deduction struct {
	MonthlyTax decimal.Decimal `json:"monthly_tax"`
	OldAge     decimal.Decimal `json:"old_age_insurance"`
	Pension    decimal.Decimal `json:"pension_insurance"`
	Health     decimal.Decimal `json:"health_insurance"`
}

// Contributions is the employee's monthly BPJS share.
func (d Deduction) Contributions() decimal.Decimal {
	return generic.Sum(d.OldAge, d.Pension, d.Health)
}

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler computes the annual tax of a profile and the monthly deduction
// of a payroll cycle. It is safe for concurrent use.
type Reconciler struct {
	scheduler *bpjs.Scheduler
	deriver   *Deriver
	engine    *BracketEngine

	withContributions bool
	logger            zerolog.Logger

	// configErr is the validation failure of the configuration, if any.
	configErr error
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithoutContributions computes tax as if the employee were outside BPJS.
func WithoutContributions() Option {
	return func(r *Reconciler) { r.withContributions = false }
}

// WithLogger sets the logger reconciliation adjustments are reported to.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// NewReconciler builds a reconciler over cfg. The configuration is validated
// once here; an invalid one makes every computation fail with
// generic.ErrInvalidConfiguration (see Err).
func NewReconciler(cfg *payroll.RateConfiguration, opts ...Option) *Reconciler {
	configErr := cfg.Validate()
	if cfg == nil {
		cfg = &payroll.RateConfiguration{}
	}
	r := &Reconciler{
		scheduler:         bpjs.NewScheduler(cfg),
		deriver:           NewDeriver(cfg),
		engine:            NewBracketEngine(cfg),
		withContributions: true,
		logger:            zerolog.Nop(),
		configErr:         configErr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Err reports whether the reconciler's configuration was rejected.
func (r *Reconciler) Err() error {
	return r.configErr
}

// AnnualTax computes the annual tax of p counting the given bonus.
func (r *Reconciler) AnnualTax(p payroll.Profile, bonus decimal.Decimal) (Result, error) {
	if r.configErr != nil {
		return Result{}, r.configErr
	}
	months, year, err := p.Period().WorkingMonths()
	if err != nil {
		return Result{}, err
	}

	agg, _, err := r.scheduler.Schedule(bpjs.ScheduleInput{
		Base:              p.ContributionBase(),
		IndustryRiskRate:  p.IndustryRiskRate,
		Enrollment:        p.Enrollment,
		WorkingMonths:     months,
		Year:              year,
		WithContributions: r.withContributions,
	})
	if err != nil {
		return Result{}, err
	}

	gross := r.deriver.Gross(p, bonus, agg, months)
	net := r.deriver.Net(gross, agg)
	exemption := r.deriver.Exemption(p.MaritalStatus, p.Dependents)
	taxable := r.deriver.TaxableIncome(net.Total, exemption)

	tax := r.engine.Tax(taxable)
	surcharge := Surcharge(tax, p.HasTaxpayerID)

	return Result{
		WorkingMonths: months,
		Year:          year,
		Gross:         gross,
		Net:           net,
		Exemption:     exemption,
		TaxableIncome: taxable,
		Surcharge:     surcharge,
		AnnualTax:     tax.Add(surcharge),
		Contributions: agg,
	}, nil
}

// Calculate runs one payroll cycle. previousCycleTax and firstCycleTax are
// the carries from earlier cycles of the same year; pass zero for both in
// the first cycle.
func (r *Reconciler) Calculate(p payroll.Profile, previousCycleTax, firstCycleTax decimal.Decimal) (Result, Deduction, error) {
	if r.configErr != nil {
		return Result{}, Deduction{}, r.configErr
	}
	if err := p.Validate(); err != nil {
		return Result{}, Deduction{}, fmt.Errorf("employee %q: %w", p.EmployeeID, err)
	}

	result, err := r.AnnualTax(p, decimal.Zero)
	if err != nil {
		return Result{}, Deduction{}, err
	}
	months := result.WorkingMonths

	baselineTax := result.AnnualTax
	if firstCycleTax.IsPositive() {
		baselineTax = firstCycleTax
	}
	baseline := generic.DivTrunc(baselineTax, months)

	adjustment := decimal.Zero
	if previousCycleTax.IsPositive() {
		if p.Bonus.IsPositive() {
			if result, err = r.AnnualTax(p, p.Bonus); err != nil {
				return Result{}, Deduction{}, err
			}
		}
		adjustment = result.AnnualTax.Sub(previousCycleTax)
		if !adjustment.IsZero() {
			r.logger.Debug().
				Str("employee_id", p.EmployeeID).
				Stringer("previous_annual_tax", previousCycleTax).
				Stringer("annual_tax", result.AnnualTax).
				Stringer("adjustment", adjustment).
				Msg("annual tax changed since previous cycle")
		}
	}

	agg := result.Contributions
	deduction := Deduction{
		MonthlyTax: baseline.Add(adjustment),
		OldAge:     generic.DivTrunc(agg.OldAge.Individual, months),
		Pension:    generic.DivTrunc(agg.Pension.Individual, months),
		Health:     generic.DivTrunc(agg.Health.Individual, months),
	}
	return result, deduction, nil
}

// CalculateTax is a one-shot Calculate with a fresh reconciler.
func CalculateTax(p payroll.Profile, cfg *payroll.RateConfiguration, previousCycleTax, firstCycleTax decimal.Decimal, opts ...Option) (Result, Deduction, error) {
	return NewReconciler(cfg, opts...).Calculate(p, previousCycleTax, firstCycleTax)
}
