/*
schedule.go - Annual BPJS contribution schedule

PURPOSE:
  Generates the monthly contributions of a working year and folds them into
  an AnnualAggregate. Month ordinals run 1..N where N is the number of
  working months; each month is computed independently so the pension cap
  transition applies to exactly the months it covers.

EXAMPLE:
  sched := NewScheduler(cfg)
  agg, months, err := sched.Schedule(ScheduleInput{
      Base:              decimal.NewFromInt(8000000),
      Enrollment:        payroll.EnrollAll(),
      WorkingMonths:     12,
      Year:              2018,
      WithContributions: true,
  })
  // agg.Pension.Individual = 954,070 (two months at the lower cap)
  // len(months) = 12

DISABLED CONTRIBUTIONS:
  WithContributions=false yields an all-zero aggregate and no months. The
  tax pipeline uses this to compute tax for employees outside BPJS.

SEE ALSO:
  - calculator.go: Per-month formulas
  - pph21/reconcile.go: Consumes the aggregate
*/
package bpjs

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
)

// ScheduleInput describes one working year to schedule.
type ScheduleInput struct {
	Base              decimal.Decimal
	IndustryRiskRate  decimal.Decimal
	Enrollment        payroll.Enrollment
	WorkingMonths     int
	Year              int
	WithContributions bool
}

// Scheduler folds monthly contributions into annual figures.
type Scheduler struct {
	Calculator *Calculator
}

func NewScheduler(cfg *payroll.RateConfiguration) *Scheduler {
	return &Scheduler{Calculator: NewCalculator(cfg)}
}

// Schedule returns the annual aggregate and the per-month contributions in
// month order. The aggregate always equals the sum of the returned months.
func (s *Scheduler) Schedule(in ScheduleInput) (AnnualAggregate, []MonthlyContribution, error) {
	if err := generic.ValidateWorkingMonths(in.WorkingMonths); err != nil {
		return AnnualAggregate{}, nil, err
	}

	agg := AnnualAggregate{WorkingMonths: in.WorkingMonths, Year: in.Year, Breakdown: zeroBreakdown()}
	if !in.WithContributions {
		return agg, nil, nil
	}

	ordinals := generic.MonthRange(in.WorkingMonths)
	months := make([]MonthlyContribution, 0, len(ordinals))
	for _, m := range ordinals {
		mc := s.Calculator.month(in.Base, in.IndustryRiskRate, in.Enrollment, m, in.Year)
		months = append(months, mc)
		agg.Breakdown = agg.Breakdown.Add(mc.Breakdown)
	}
	return agg, months, nil
}

// AnnualContributions schedules a profile's contributions over workingMonths
// of year. An invalid configuration is rejected.
func AnnualContributions(profile payroll.Profile, cfg *payroll.RateConfiguration, workingMonths, year int, withContributions bool) (AnnualAggregate, error) {
	if err := cfg.Validate(); err != nil {
		return AnnualAggregate{}, err
	}
	agg, _, err := NewScheduler(cfg).Schedule(ScheduleInput{
		Base:              profile.ContributionBase(),
		IndustryRiskRate:  profile.IndustryRiskRate,
		Enrollment:        profile.Enrollment,
		WorkingMonths:     workingMonths,
		Year:              year,
		WithContributions: withContributions,
	})
	return agg, err
}
