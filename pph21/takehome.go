package pph21

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/payroll"
)

// TakeHomePay is the monthly amount paid out to the employee.
//
// Under GROSS the employee bears the tax and their BPJS share, so both are
// withheld from the salary. Under NETT the employer bears them and the full
// salary is paid. An unknown method pays nothing.
func TakeHomePay(method payroll.TaxMethod, totalSalary, monthlyTax, contributions decimal.Decimal) decimal.Decimal {
	switch method {
	case payroll.TaxGross:
		return totalSalary.Sub(monthlyTax.Add(contributions))
	case payroll.TaxNett:
		return totalSalary
	default:
		return decimal.Zero
	}
}

// MonthlySalary is the salary take-home pay is computed from: base salary
// plus fixed and non-fixed allowances.
func MonthlySalary(p payroll.Profile) decimal.Decimal {
	return p.BaseSalary.Add(p.FixedAllowanceTotal()).Add(p.NonFixedAllowanceTotal())
}
