package pph21

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/payroll"
)

// SurchargeRate is added on top of the tax of employees without a taxpayer
// identification number (NPWP).
var SurchargeRate = decimal.NewFromFloat(0.2)

// BracketEngine applies the progressive PPh21 schedule.
type BracketEngine struct {
	Brackets []payroll.Bracket
}

func NewBracketEngine(cfg *payroll.RateConfiguration) *BracketEngine {
	return &BracketEngine{Brackets: cfg.Brackets}
}

// Tax returns the progressive tax on an annual taxable income. Each tier
// taxes the slice of income between the previous tier's bound and its own.
//
//	Tax(60,600,000) = 50,000,000 x 5% + 10,600,000 x 15% = 4,090,000
func (e *BracketEngine) Tax(income decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	lower := decimal.Zero
	for _, b := range e.Brackets {
		if !income.GreaterThan(lower) {
			break
		}
		upper := income
		if !b.Unbounded() && income.GreaterThan(*b.UpTo) {
			upper = *b.UpTo
		}
		tax = tax.Add(upper.Sub(lower).Mul(b.Rate))
		if b.Unbounded() {
			break
		}
		lower = *b.UpTo
	}
	return tax
}

// Surcharge is the extra tax owed without a taxpayer ID.
func Surcharge(tax decimal.Decimal, hasTaxpayerID bool) decimal.Decimal {
	if hasTaxpayerID {
		return decimal.Zero
	}
	return tax.Mul(SurchargeRate)
}
