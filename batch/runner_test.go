package batch_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pph21-engine/batch"
	"github.com/warp/pph21-engine/factory"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func enrolledProfile() payroll.Profile {
	return payroll.Profile{
		BaseSalary:              idr(8000000),
		IncludeAllowancesInBase: true,
		TaxMethod:               payroll.TaxGross,
		HasTaxpayerID:           true,
		MaritalStatus:           payroll.Single,
		StartDate:               generic.MustParseDate("01/01/2018"),
		EndDate:                 generic.MustParseDate("01/12/2018"),
		Enrollment:              payroll.EnrollAll(),
		IndustryRiskRate:        decimal.RequireFromString("0.24"),
	}
}

func unenrolledProfile() payroll.Profile {
	return payroll.Profile{
		BaseSalary:       idr(5750000),
		TaxMethod:        payroll.TaxGross,
		HasTaxpayerID:    true,
		MaritalStatus:    payroll.Married,
		StartDate:        generic.MustParseDate("01/01/2018"),
		EndDate:          generic.MustParseDate("01/12/2018"),
		IndustryRiskRate: decimal.RequireFromString("0.24"),
	}
}

// bonusYear: January and February regular, an 8,000,000 bonus in March,
// regular again in April.
func bonusYear() []batch.CycleInput {
	return []batch.CycleInput{
		{Cycle: cycle(2018, time.January), Profile: enrolledProfile()},
		{Cycle: cycle(2018, time.February), Profile: enrolledProfile()},
		{Cycle: cycle(2018, time.March), Profile: enrolledProfile().WithBonus(idr(8000000))},
		{Cycle: cycle(2018, time.April), Profile: enrolledProfile()},
	}
}

func assertAmount(t *testing.T, expected int64, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !idr(expected).Equal(actual) {
		assert.Fail(t, fmt.Sprintf("expected %d, got %s", expected, actual), msgAndArgs...)
	}
}

// =============================================================================
// CARRY THREADING
// =============================================================================

func TestRunner_ThreadsCarriesAcrossCycles(t *testing.T) {
	// GIVEN: One employee with a bonus in March
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger())

	// WHEN
	report, err := runner.Run(context.Background(), []batch.Employee{{ID: "emp-001", Cycles: bonusYear()}})
	require.NoError(t, err)

	// THEN
	require.Len(t, report.Employees, 1)
	cycles := report.Employees[0].Cycles
	require.Len(t, cycles, 4)

	// January: no carries, baseline only
	assertAmount(t, 1923300, cycles[0].Result.AnnualTax)
	assertAmount(t, 160275, cycles[0].Deduction.MonthlyTax)
	assertAmount(t, 7520220, cycles[0].TakeHomePay)

	// February: unchanged
	assertAmount(t, 160275, cycles[1].Deduction.MonthlyTax)

	// March: bonus increase withheld in full
	assertAmount(t, 2303300, cycles[2].Result.AnnualTax)
	assertAmount(t, 540275, cycles[2].Deduction.MonthlyTax)

	// April: the annual tax falls back against March's carry
	assertAmount(t, 1923300, cycles[3].Result.AnnualTax)
	assertAmount(t, -219725, cycles[3].Deduction.MonthlyTax)

	assert.NotEqual(t, uuid.Nil, report.RunID)
}

func TestRunner_RecordsLedger(t *testing.T) {
	ledger := batch.NewCarryLedger()
	runner := batch.NewRunner(factory.DefaultRates(), ledger)

	_, err := runner.Run(context.Background(), []batch.Employee{{ID: "emp-001", Cycles: bonusYear()[:3]}})
	require.NoError(t, err)

	previous, first := ledger.Carries(context.Background(), "emp-001", 2018)
	assertAmount(t, 1923300, first)
	assertAmount(t, 2303300, previous)
}

// =============================================================================
// ORDERING AND FAILURES
// =============================================================================

func TestRunner_OutOfOrderCyclesFail(t *testing.T) {
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger())
	cycles := []batch.CycleInput{
		{Cycle: cycle(2018, time.February), Profile: enrolledProfile()},
		{Cycle: cycle(2018, time.January), Profile: enrolledProfile()},
	}

	report, err := runner.Run(context.Background(), []batch.Employee{{ID: "emp-001", Cycles: cycles}})

	require.ErrorIs(t, err, generic.ErrCycleOutOfOrder)
	assert.Contains(t, err.Error(), "emp-001")
	assert.Len(t, report.Employees[0].Cycles, 1)
}

func TestRunner_InvalidProfileFails(t *testing.T) {
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger())
	bad := enrolledProfile()
	bad.EndDate = generic.MustParseDate("01/01/2019")

	_, err := runner.Run(context.Background(), []batch.Employee{
		{ID: "emp-001", Cycles: []batch.CycleInput{{Cycle: cycle(2018, time.January), Profile: bad}}},
	})

	assert.ErrorIs(t, err, generic.ErrCrossYearPeriod)
}

func TestRunner_InvalidConfigurationFailsBeforeAnyCycle(t *testing.T) {
	ledger := batch.NewCarryLedger()
	runner := batch.NewRunner(&payroll.RateConfiguration{}, ledger)

	_, err := runner.Run(context.Background(), []batch.Employee{{ID: "emp-001", Cycles: bonusYear()}})

	require.ErrorIs(t, err, generic.ErrInvalidConfiguration)
	assert.Empty(t, ledger.History(context.Background(), "emp-001"))
}

func TestRunner_CancelledContext(t *testing.T) {
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, []batch.Employee{{ID: "emp-001", Cycles: bonusYear()}})

	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestRunner_ManyEmployees_ResultsInInputOrder(t *testing.T) {
	// GIVEN: More employees than workers
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger(), batch.WithConcurrency(4))
	var employees []batch.Employee
	for i := 0; i < 40; i++ {
		employees = append(employees, batch.Employee{
			ID: fmt.Sprintf("emp-%03d", i),
			Cycles: []batch.CycleInput{
				{Cycle: cycle(2018, time.January), Profile: unenrolledProfile()},
				{Cycle: cycle(2018, time.February), Profile: unenrolledProfile()},
			},
		})
	}

	// WHEN
	report, err := runner.Run(context.Background(), employees)
	require.NoError(t, err)

	// THEN
	require.Len(t, report.Employees, 40)
	for i, res := range report.Employees {
		assert.Equal(t, fmt.Sprintf("emp-%03d", i), res.EmployeeID)
		require.Len(t, res.Cycles, 2)
		assertAmount(t, 29375, res.Cycles[1].Deduction.MonthlyTax)
	}
}

// =============================================================================
// OBSERVABILITY
// =============================================================================

func TestRunner_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := batch.NewMetrics(reg)
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger(), batch.WithMetrics(metrics))

	_, err := runner.Run(context.Background(), []batch.Employee{
		{ID: "emp-001", Cycles: bonusYear()},
		{ID: "emp-002", Cycles: []batch.CycleInput{
			{Cycle: cycle(2018, time.January), Profile: unenrolledProfile()},
			{Cycle: cycle(2018, time.February), Profile: unenrolledProfile()},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.CyclesProcessed.WithLabelValues(batch.OutcomeOK)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CyclesProcessed.WithLabelValues(batch.OutcomeFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EmployeesProcessed))
	// 160,275 x 2 + 540,275 + 29,375 x 2
	assert.Equal(t, 919575.0, testutil.ToFloat64(metrics.TaxWithheld))
	assert.Equal(t, 219725.0, testutil.ToFloat64(metrics.TaxRefunded))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.CycleDuration))
}

func TestRunner_FailedCycleCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := batch.NewMetrics(reg)
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger(), batch.WithMetrics(metrics))
	bad := enrolledProfile()
	bad.BaseSalary = idr(-1)

	_, err := runner.Run(context.Background(), []batch.Employee{
		{ID: "emp-001", Cycles: []batch.CycleInput{{Cycle: cycle(2018, time.January), Profile: bad}}},
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CyclesProcessed.WithLabelValues(batch.OutcomeFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.EmployeesProcessed))
}

func TestRunner_LogsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	runner := batch.NewRunner(factory.DefaultRates(), batch.NewCarryLedger(), batch.WithLogger(logger))

	report, err := runner.Run(context.Background(), []batch.Employee{{ID: "emp-001", Cycles: bonusYear()[:1]}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), report.RunID.String())
	assert.Contains(t, buf.String(), "batch run completed")
}
