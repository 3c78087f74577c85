package bpjs_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pph21-engine/bpjs"
	"github.com/warp/pph21-engine/factory"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func idr(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertAmount(t *testing.T, expected int64, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !idr(expected).Equal(actual) {
		assert.Fail(t, fmt.Sprintf("expected %d, got %s", expected, actual), msgAndArgs...)
	}
}

var riskRate = decimal.RequireFromString("0.24")

func newCalculator() *bpjs.Calculator {
	return bpjs.NewCalculator(factory.DefaultRates())
}

// =============================================================================
// PER-PROGRAM FORMULAS
// =============================================================================

func TestCalculator_OldAge_Uncapped(t *testing.T) {
	calc := newCalculator()

	tests := []struct {
		base       int64
		company    int64
		individual int64
	}{
		{8500000, 314500, 170000},
		{8000000, 296000, 160000},
		{6000000, 222000, 120000},
		{4500000, 166500, 90000},
		{3700000, 136900, 74000},
	}

	for _, tt := range tests {
		c := calc.OldAge(idr(tt.base))
		assertAmount(t, tt.company, c.Company, "company @%d", tt.base)
		assertAmount(t, tt.individual, c.Individual, "individual @%d", tt.base)
	}
}

func TestCalculator_Health_CapsTheBase(t *testing.T) {
	calc := newCalculator()

	tests := []struct {
		name       string
		base       int64
		company    int64
		individual int64
	}{
		{"above cap", 8500000, 320000, 80000},
		{"at cap", 8000000, 320000, 80000},
		{"below cap", 4500000, 180000, 45000},
		{"low salary", 3700000, 148000, 37000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := calc.Health(idr(tt.base))
			assertAmount(t, tt.company, c.Company)
			assertAmount(t, tt.individual, c.Individual)
		})
	}
}

func TestCalculator_Pension_TransitionMonths(t *testing.T) {
	// GIVEN: The 2018 table, where months 1-2 use the old 7,703,500 cap
	calc := newCalculator()

	tests := []struct {
		name       string
		month      int
		year       int
		company    int64
		individual int64
	}{
		{"february 2018 uses old cap", 2, 2018, 154070, 77035},
		{"january 2018 uses old cap", 1, 2018, 154070, 77035},
		{"march 2018 uses new cap", 3, 2018, 161880, 80940},
		{"april 2018 uses new cap", 4, 2018, 161880, 80940},
		{"february 2019 uses new cap", 2, 2019, 161880, 80940},
		{"no calendar context uses new cap", 0, 0, 161880, 80940},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// WHEN: Computing pension on a salary above both caps
			c := calc.Pension(idr(8500000), tt.month, tt.year)

			// THEN: The cap in force for that month applies
			assertAmount(t, tt.company, c.Company)
			assertAmount(t, tt.individual, c.Individual)
		})
	}
}

func TestCalculator_Pension_BelowCap(t *testing.T) {
	calc := newCalculator()

	c := calc.Pension(idr(4500000), 1, 2018)
	assertAmount(t, 90000, c.Company)
	assertAmount(t, 45000, c.Individual)
}

func TestCalculator_Death_TruncatesToWholeRupiah(t *testing.T) {
	calc := newCalculator()

	assertAmount(t, 25500, calc.Death(idr(8500000)))
	assertAmount(t, 24000, calc.Death(idr(8000000)))
	assertAmount(t, 11100, calc.Death(idr(3700000)))
	// 1,234,567 x 0.003 = 3,703.701
	assertAmount(t, 3703, calc.Death(idr(1234567)))
}

func TestCalculator_Accident_RiskIsAPercentage(t *testing.T) {
	calc := newCalculator()

	assertAmount(t, 20400, calc.Accident(idr(8500000), riskRate))
	assertAmount(t, 19200, calc.Accident(idr(8000000), riskRate))
	assertAmount(t, 14400, calc.Accident(idr(6000000), riskRate))
	assertAmount(t, 10800, calc.Accident(idr(4500000), riskRate))
	assertAmount(t, 8880, calc.Accident(idr(3700000), riskRate))
}

func TestCalculator_Accident_RoundsToOneDecimal(t *testing.T) {
	calc := newCalculator()

	// 1,234,567 x 0.0024 = 2,962.9608
	got := calc.Accident(idr(1234567), riskRate)
	assert.Equal(t, "2963", got.String())
}

func TestCalculator_Compute_DeathAndAccidentAreCompanyOnly(t *testing.T) {
	calc := newCalculator()

	for _, typ := range []bpjs.Type{bpjs.Death, bpjs.Accident} {
		c := calc.Compute(typ, idr(8000000), riskRate, 1, 2018)
		assert.True(t, c.Individual.IsZero(), "%s individual share", typ)
		assert.True(t, c.Company.IsPositive(), "%s company share", typ)
		assert.False(t, typ.SharedWithEmployee())
	}
}

func TestCalculator_Compute_MatchesPerProgramFunctions(t *testing.T) {
	calc := newCalculator()
	base := idr(8000000)

	assert.Equal(t, calc.OldAge(base), calc.Compute(bpjs.OldAge, base, riskRate, 0, 0))
	assert.Equal(t, calc.Health(base), calc.Compute(bpjs.Health, base, riskRate, 0, 0))
	assert.Equal(t, calc.Pension(base, 2, 2018), calc.Compute(bpjs.Pension, base, riskRate, 2, 2018))
}

// =============================================================================
// PROFILE ENTRY POINT
// =============================================================================

func TestMonthlyContributions_AllEnrolled(t *testing.T) {
	// GIVEN: 8,000,000 base salary, every program
	profile := payroll.Profile{
		BaseSalary:              idr(8000000),
		IncludeAllowancesInBase: true,
		Enrollment:              payroll.EnrollAll(),
		IndustryRiskRate:        riskRate,
	}

	// WHEN
	mc, err := bpjs.MonthlyContributions(profile, factory.DefaultRates())
	require.NoError(t, err)

	// THEN: Standard pension cap, no calendar context
	assert.Equal(t, 0, mc.Month)
	assertAmount(t, 296000, mc.OldAge.Company)
	assertAmount(t, 160000, mc.OldAge.Individual)
	assertAmount(t, 160000, mc.Pension.Company)
	assertAmount(t, 80000, mc.Pension.Individual)
	assertAmount(t, 320000, mc.Health.Company)
	assertAmount(t, 80000, mc.Health.Individual)
	assertAmount(t, 24000, mc.Death.Company)
	assertAmount(t, 19200, mc.Accident.Company)
	assertAmount(t, 320000, mc.IndividualTotal())
	assertAmount(t, 819200, mc.CompanyTotal())
	assertAmount(t, 400000, mc.Health.Total())
}

func TestMonthlyContributions_NotEnrolledIsZero(t *testing.T) {
	profile := payroll.Profile{
		BaseSalary:       idr(8000000),
		Enrollment:       payroll.Enrollment{Health: true},
		IndustryRiskRate: riskRate,
	}

	mc, err := bpjs.MonthlyContributions(profile, factory.DefaultRates())
	require.NoError(t, err)

	assertAmount(t, 80000, mc.Health.Individual)
	for _, typ := range []bpjs.Type{bpjs.OldAge, bpjs.Pension, bpjs.Death, bpjs.Accident} {
		assert.True(t, mc.Get(typ).IsZero(), "%s should be zero", typ)
	}
}

func TestMonthlyContributions_AllowancesInBase(t *testing.T) {
	profile := payroll.Profile{
		BaseSalary:         idr(4000000),
		FixedAllowances:    map[string]decimal.Decimal{"transport": idr(300000)},
		NonFixedAllowances: map[string]decimal.Decimal{"meal": idr(200000)},
		Enrollment:         payroll.Enrollment{OldAge: true},
	}
	cfg := factory.DefaultRates()

	without, err := bpjs.MonthlyContributions(profile, cfg)
	require.NoError(t, err)
	assertAmount(t, 80000, without.OldAge.Individual)

	profile.IncludeAllowancesInBase = true
	with, err := bpjs.MonthlyContributions(profile, cfg)
	require.NoError(t, err)
	assertAmount(t, 90000, with.OldAge.Individual)
}

func TestMonthlyContributions_InvalidConfigurationRejected(t *testing.T) {
	profile := payroll.Profile{BaseSalary: idr(8000000), Enrollment: payroll.EnrollAll()}

	_, err := bpjs.MonthlyContributions(profile, &payroll.RateConfiguration{})
	assert.ErrorIs(t, err, generic.ErrInvalidConfiguration)

	_, err = bpjs.MonthlyContributions(profile, nil)
	assert.ErrorIs(t, err, generic.ErrInvalidConfiguration)
}
