/*
runner.go - Payroll-year batch runner

PURPOSE:
  Computes monthly PPh21 deductions for many employees. Employees are
  independent and run in parallel; the cycles of one employee depend on each
  other through the reconciliation carries and run in order.

CARRY THREADING:
  Each cycle carries the employee's profile as of that month, projected over
  the whole employment window of the year. For each cycle of an employee:
    previous, first := ledger.Carries(employee, year)
    result, deduction := reconciler.Calculate(profile, previous, first)
    ledger.Record(employee, cycle, result.AnnualTax)

  The first cycle of a year sees zero carries. Its annual tax becomes the
  first carry for the rest of the year, and every cycle's annual tax becomes
  the previous carry of the next one.

ORDERING:
  Cycles are applied in the order given. A cycle that is not after the
  previous one is rejected by the ledger and fails the run.

USAGE:
  runner := batch.NewRunner(cfg, batch.NewCarryLedger(),
      batch.WithConcurrency(8),
      batch.WithLogger(logger),
      batch.WithMetrics(batch.NewMetrics(prometheus.DefaultRegisterer)),
  )
  report, err := runner.Run(ctx, employees)

SEE ALSO:
  - ledger.go: Carry ledger
  - pph21/reconcile.go: Per-cycle computation
*/
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/payroll"
	"github.com/warp/pph21-engine/pph21"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// INPUT AND OUTPUT
// =============================================================================

// CycleInput is the profile of an employee as of one payroll cycle. The
// profile's employment window is the projected window of the whole payroll
// year; Bonus holds a bonus paid in this cycle.
type CycleInput struct {
	Cycle   Cycle
	Profile payroll.Profile
}

// Employee is one employee's payroll cycles for the run, in calendar order.
type Employee struct {
	ID     string
	Cycles []CycleInput
}

// CycleResult is the outcome of one cycle.
type CycleResult struct {
	Cycle       Cycle           `json:"cycle"`
	Result      pph21.Result    `json:"calculated_tax"`
	Deduction   pph21.Deduction `json:"deduction"`
	TakeHomePay decimal.Decimal `json:"take_home_pay"`
}

type EmployeeResult struct {
	EmployeeID string        `json:"employee_id"`
	Cycles     []CycleResult `json:"cycles"`
}

// Report is the outcome of a run. Employees are in input order.
type Report struct {
	RunID     uuid.UUID        `json:"run_id"`
	Employees []EmployeeResult `json:"employees"`
}

// =============================================================================
// RUNNER
// =============================================================================

type Runner struct {
	reconciler  *pph21.Reconciler
	ledger      *CarryLedger
	metrics     *Metrics
	logger      zerolog.Logger
	concurrency int

	reconcilerOpts []pph21.Option
}

type RunnerOption func(*Runner)

// WithConcurrency bounds how many employees are processed at once.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithReconcilerOptions passes options through to the reconciler.
func WithReconcilerOptions(opts ...pph21.Option) RunnerOption {
	return func(r *Runner) { r.reconcilerOpts = append(r.reconcilerOpts, opts...) }
}

func NewRunner(cfg *payroll.RateConfiguration, ledger *CarryLedger, opts ...RunnerOption) *Runner {
	r := &Runner{
		ledger:      ledger,
		logger:      zerolog.Nop(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(prometheus.NewRegistry())
	}
	reconcilerOpts := append([]pph21.Option{pph21.WithLogger(r.logger)}, r.reconcilerOpts...)
	r.reconciler = pph21.NewReconciler(cfg, reconcilerOpts...)
	return r
}

// Run processes every employee. The first failing employee cancels the
// remaining work and its error is returned.
func (r *Runner) Run(ctx context.Context, employees []Employee) (Report, error) {
	report := Report{
		RunID:     uuid.New(),
		Employees: make([]EmployeeResult, len(employees)),
	}
	logger := r.logger.With().Str("run_id", report.RunID.String()).Logger()
	if err := r.reconciler.Err(); err != nil {
		logger.Error().Err(err).Msg("batch run rejected")
		return report, err
	}
	logger.Info().Int("employees", len(employees)).Msg("batch run started")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			res, err := r.runEmployee(ctx, logger, emp)
			report.Employees[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("batch run failed")
		return report, err
	}

	logger.Info().Msg("batch run completed")
	return report, nil
}

func (r *Runner) runEmployee(ctx context.Context, logger zerolog.Logger, emp Employee) (EmployeeResult, error) {
	res := EmployeeResult{EmployeeID: emp.ID, Cycles: make([]CycleResult, 0, len(emp.Cycles))}
	log := logger.With().Str("employee_id", emp.ID).Logger()

	for _, in := range emp.Cycles {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		in.Profile.EmployeeID = emp.ID

		cr, err := r.runCycle(ctx, in.Cycle, in.Profile)
		if err != nil {
			r.metrics.CyclesProcessed.WithLabelValues(OutcomeFailed).Inc()
			log.Warn().Err(err).Stringer("cycle", in.Cycle).Msg("cycle failed")
			return res, fmt.Errorf("employee %s cycle %s: %w", emp.ID, in.Cycle, err)
		}
		r.metrics.CyclesProcessed.WithLabelValues(OutcomeOK).Inc()
		r.observeTax(cr.Deduction.MonthlyTax)

		log.Debug().
			Stringer("cycle", cr.Cycle).
			Stringer("annual_tax", cr.Result.AnnualTax).
			Stringer("monthly_tax", cr.Deduction.MonthlyTax).
			Msg("cycle computed")
		res.Cycles = append(res.Cycles, cr)
	}

	r.metrics.EmployeesProcessed.Inc()
	return res, nil
}

func (r *Runner) runCycle(ctx context.Context, cycle Cycle, profile payroll.Profile) (CycleResult, error) {
	start := time.Now()
	defer func() { r.metrics.CycleDuration.Observe(time.Since(start).Seconds()) }()

	previous, first := r.ledger.Carries(ctx, profile.EmployeeID, cycle.Year)

	result, deduction, err := r.reconciler.Calculate(profile, previous, first)
	if err != nil {
		return CycleResult{}, err
	}
	if err := r.ledger.Record(ctx, profile.EmployeeID, cycle, result.AnnualTax); err != nil {
		return CycleResult{}, err
	}

	return CycleResult{
		Cycle:       cycle,
		Result:      result,
		Deduction:   deduction,
		TakeHomePay: pph21.TakeHomePay(profile.TaxMethod, pph21.MonthlySalary(profile), deduction.MonthlyTax, deduction.Contributions()),
	}, nil
}

func (r *Runner) observeTax(monthlyTax decimal.Decimal) {
	switch {
	case monthlyTax.IsPositive():
		r.metrics.TaxWithheld.Add(monthlyTax.InexactFloat64())
	case monthlyTax.IsNegative():
		r.metrics.TaxRefunded.Add(monthlyTax.Neg().InexactFloat64())
	}
}
