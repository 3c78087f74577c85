/*
Package generic provides the domain-agnostic building blocks of the payroll engine.

PURPOSE:
  This package contains the money arithmetic, working-period calculation and
  error types shared by the contribution (bpjs) and income tax (pph21)
  packages. Nothing here knows about Indonesian regulation; it only knows
  how to round, cap and divide currency amounts and how to turn employment
  dates into a count of working months.

KEY CONCEPTS IN THIS FILE (money.go):
  - Amount helpers: decimal.Decimal is the currency type everywhere
  - TruncateTo: round an amount down to a multiple of a divisor
  - DivTrunc: integer division toward zero (monthly proration)
  - CapAt: hard ceiling applied to a contribution base

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Purity: Every helper is a pure function of its inputs
  3. Loud contracts: a non-positive truncation divisor panics

USAGE:
  taxable := generic.TruncateTo(decimal.NewFromInt(71156789), generic.Thousand)
  // 71156000

  monthly := generic.DivTrunc(decimal.NewFromInt(954070), 12)
  // 79505

SEE ALSO:
  - period.go: Working period derived from employment dates
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Currency amounts are plain decimals (IDR, no minor unit)
// =============================================================================

var (
	// Thousand is the granularity annual taxable income is truncated to.
	Thousand = decimal.NewFromInt(1000)

	hundred = decimal.NewFromInt(100)
)

// NewAmount converts a whole currency value into a decimal amount.
func NewAmount(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

// TruncateTo rounds amount down to the nearest multiple of divisor.
//
// 71156789 truncated to 1000 is 71156000. Truncating a value that already is
// a multiple of divisor returns it unchanged.
//
// A non-positive divisor is a programming error and panics.
func TruncateTo(amount, divisor decimal.Decimal) decimal.Decimal {
	if !divisor.IsPositive() {
		panic(fmt.Sprintf("generic: truncation divisor must be positive, got %s", divisor))
	}
	return amount.Sub(amount.Mod(divisor))
}

// DivTrunc divides amount by n and drops the fractional part (toward zero).
func DivTrunc(amount decimal.Decimal, n int) decimal.Decimal {
	q, _ := amount.QuoRem(decimal.NewFromInt(int64(n)), 0)
	return q
}

// CapAt returns amount, or ceiling when amount exceeds it.
// An amount equal to the ceiling is returned as is.
func CapAt(amount, ceiling decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(ceiling) {
		return ceiling
	}
	return amount
}

// FloorAtZero clamps negative amounts to zero.
func FloorAtZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// FromPercent converts a percentage (0.24 meaning 0.24%) into a fraction.
func FromPercent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// Sum adds amounts together.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
