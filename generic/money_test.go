package generic_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
)

func idr(v int64) decimal.Decimal { return generic.NewAmount(v) }

// =============================================================================
// TRUNCATION TESTS
// =============================================================================

func TestTruncateTo_Thousand(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{71156700, 71156000},
		{71156789, 71156000},
		{38466410, 38466000},
		{999, 0},
		{0, 0},
	}

	for _, tt := range tests {
		got := generic.TruncateTo(idr(tt.in), generic.Thousand)
		if !got.Equal(idr(tt.want)) {
			t.Errorf("TruncateTo(%d) = %s, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTruncateTo_Idempotent(t *testing.T) {
	once := generic.TruncateTo(idr(71156700), generic.Thousand)
	twice := generic.TruncateTo(once, generic.Thousand)

	if !once.Equal(twice) {
		t.Errorf("truncating twice changed %s to %s", once, twice)
	}
}

func TestTruncateTo_NonPositiveDivisorPanics(t *testing.T) {
	for _, divisor := range []int64{0, -1000} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for divisor %d", divisor)
				}
			}()
			generic.TruncateTo(idr(1000), idr(divisor))
		}()
	}
}

// =============================================================================
// DIVISION AND CAPS
// =============================================================================

func TestDivTrunc_DropsFraction(t *testing.T) {
	tests := []struct {
		amount int64
		months int
		want   int64
	}{
		{407800, 12, 33983},
		{802500, 12, 66875},
		{10300000, 12, 858333},
		{954070, 12, 79505},
		{1923300, 12, 160275},
	}

	for _, tt := range tests {
		got := generic.DivTrunc(idr(tt.amount), tt.months)
		if !got.Equal(idr(tt.want)) {
			t.Errorf("DivTrunc(%d, %d) = %s, want %d", tt.amount, tt.months, got, tt.want)
		}
	}
}

func TestDivTrunc_NegativeTowardZero(t *testing.T) {
	got := generic.DivTrunc(idr(-25), 12)
	if !got.Equal(idr(-2)) {
		t.Errorf("DivTrunc(-25, 12) = %s, want -2", got)
	}
}

func TestCapAt(t *testing.T) {
	ceiling := idr(8000000)

	if got := generic.CapAt(idr(8500000), ceiling); !got.Equal(ceiling) {
		t.Errorf("above cap: got %s", got)
	}
	if got := generic.CapAt(ceiling, ceiling); !got.Equal(ceiling) {
		t.Errorf("at cap: got %s", got)
	}
	if got := generic.CapAt(idr(4500000), ceiling); !got.Equal(idr(4500000)) {
		t.Errorf("below cap: got %s", got)
	}
}

func TestFromPercent(t *testing.T) {
	got := generic.FromPercent(decimal.RequireFromString("0.24"))
	if !got.Equal(decimal.RequireFromString("0.0024")) {
		t.Errorf("FromPercent(0.24) = %s", got)
	}
}
