package pph21_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/pph21-engine/factory"
	"github.com/warp/pph21-engine/pph21"
)

func idr(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertAmount(t *testing.T, expected int64, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !idr(expected).Equal(actual) {
		assert.Fail(t, fmt.Sprintf("expected %d, got %s", expected, actual), msgAndArgs...)
	}
}

func TestBracketEngine_Tax(t *testing.T) {
	engine := pph21.NewBracketEngine(factory.DefaultRates())

	tests := []struct {
		income int64
		tax    int64
	}{
		{0, 0},
		{4650000, 232500},
		{8156000, 407800},
		{16050000, 802500},
		{30309000, 1515450},
		{38466000, 1923300},
		{50000000, 2500000},
		{60600000, 4090000},
		{159600000, 18940000},
		{250000000, 32500000},
		{261384000, 35346000},
		{500000000, 95000000},
		{600000000, 125000000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.income), func(t *testing.T) {
			assertAmount(t, tt.tax, engine.Tax(idr(tt.income)))
		})
	}
}

func TestBracketEngine_ContinuousAtThresholds(t *testing.T) {
	// GIVEN: Each threshold of the schedule
	engine := pph21.NewBracketEngine(factory.DefaultRates())

	for _, threshold := range []int64{50000000, 250000000, 500000000} {
		// WHEN: Moving one rupiah across it
		at := engine.Tax(idr(threshold))
		above := engine.Tax(idr(threshold + 1))

		// THEN: Tax grows by at most the top marginal rate, never jumps
		step := above.Sub(at)
		assert.True(t, step.IsPositive(), "threshold %d", threshold)
		assert.True(t, step.LessThanOrEqual(decimal.RequireFromString("0.30")), "threshold %d: step %s", threshold, step)
	}
}

func TestBracketEngine_Monotonic(t *testing.T) {
	engine := pph21.NewBracketEngine(factory.DefaultRates())

	prev := decimal.Zero
	for income := int64(0); income <= 700000000; income += 7000000 {
		tax := engine.Tax(idr(income))
		assert.True(t, tax.GreaterThanOrEqual(prev), "income %d", income)
		prev = tax
	}
}

func TestSurcharge(t *testing.T) {
	assertAmount(t, 46500, pph21.Surcharge(idr(232500), false))
	assertAmount(t, 0, pph21.Surcharge(idr(232500), true))
	assertAmount(t, 0, pph21.Surcharge(idr(0), false))
}
