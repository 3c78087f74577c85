package factory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/warp/pph21-engine/batch"
	"github.com/warp/pph21-engine/generic"
)

// =============================================================================
// PAYROLL YEAR SCHEMA
// =============================================================================

// PayrollFile lists the cycles of a payroll run per employee.
//
//	employees:
//	  - employee_id: emp-001
//	    cycles:
//	      - cycle: {year: 2018, month: 1}
//	        base_salary: 8000000
//	        ...
//	      - cycle: {year: 2018, month: 3}
//	        base_salary: 8000000
//	        bonus_allowances: 8000000
//	        ...
type PayrollFile struct {
	Employees []EmployeeFile `yaml:"employees" json:"employees" validate:"required,min=1,dive"`
}

type EmployeeFile struct {
	EmployeeID string      `yaml:"employee_id" json:"employee_id" validate:"required"`
	Cycles     []CycleFile `yaml:"cycles" json:"cycles" validate:"required,min=1"`
}

// CycleFile is a profile as of one payroll cycle.
type CycleFile struct {
	Cycle       MonthFile `yaml:"cycle" json:"cycle"`
	ProfileFile `yaml:",inline"`
}

// =============================================================================
// DECODING
// =============================================================================

// ParsePayroll decodes a payroll-year file into batch input. Cycle order is
// preserved; the runner rejects cycles out of calendar order.
func ParsePayroll(r io.Reader, format Format) ([]batch.Employee, error) {
	var pf PayrollFile
	if err := decodeStrict(r, format, &pf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty payroll file", generic.ErrInvalidProfile)
		}
		return nil, fmt.Errorf("%w: failed to parse payroll file: %w", generic.ErrInvalidProfile, err)
	}
	if err := validateProfileStruct(pf); err != nil {
		return nil, err
	}

	employees := make([]batch.Employee, 0, len(pf.Employees))
	for _, ef := range pf.Employees {
		emp := batch.Employee{ID: ef.EmployeeID, Cycles: make([]batch.CycleInput, 0, len(ef.Cycles))}
		for i, cf := range ef.Cycles {
			if err := validateProfileStruct(cf.Cycle); err != nil {
				return nil, fmt.Errorf("employee %s cycle %d: %w", ef.EmployeeID, i+1, err)
			}
			cf.EmployeeID = ef.EmployeeID
			profile, err := FromProfileFile(cf.ProfileFile)
			if err != nil {
				return nil, fmt.Errorf("employee %s cycle %d: %w", ef.EmployeeID, i+1, err)
			}
			emp.Cycles = append(emp.Cycles, batch.CycleInput{
				Cycle:   batch.Cycle{Year: cf.Cycle.Year, Month: time.Month(cf.Cycle.Month)},
				Profile: profile,
			})
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// LoadPayroll reads a payroll-year file from path.
func LoadPayroll(path string) ([]batch.Employee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payroll file: %w", err)
	}
	return ParsePayroll(bytes.NewReader(data), FormatFor(path))
}
