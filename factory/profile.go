package factory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// PROFILE SCHEMA
// =============================================================================

// ProfileFile is the on-disk representation of an employee profile. Keys
// follow the payroll export format; dates are dd/mm/yyyy.
//
//	base_salary: 8000000
//	start_work_date: 01/01/2018
//	end_work_date: 01/12/2018
//	tax_method: GROSS
//	npwp_status: true
//	marital_status: SINGLE
//	dependents: 0
//	...
type ProfileFile struct {
	EmployeeID string `yaml:"employee_id,omitempty" json:"employee_id,omitempty"`

	BaseSalary         *float64           `yaml:"base_salary" json:"base_salary" validate:"required,gte=0"`
	FixedAllowances    map[string]float64 `yaml:"fixed_allowances,omitempty" json:"fixed_allowances,omitempty" validate:"dive,gte=0"`
	NonFixedAllowances map[string]float64 `yaml:"non_fixed_allowances,omitempty" json:"non_fixed_allowances,omitempty" validate:"dive,gte=0"`
	Overtime           float64            `yaml:"overtime_allowances,omitempty" json:"overtime_allowances,omitempty" validate:"gte=0"`
	Bonus              float64            `yaml:"bonus_allowances,omitempty" json:"bonus_allowances,omitempty" validate:"gte=0"`

	StartDate string `yaml:"start_work_date" json:"start_work_date" validate:"required"`
	EndDate   string `yaml:"end_work_date" json:"end_work_date" validate:"required"`

	TaxMethod     string `yaml:"tax_method" json:"tax_method" validate:"required,oneof=GROSS NETT"`
	NPWP          *bool  `yaml:"npwp_status" json:"npwp_status" validate:"required"`
	MaritalStatus string `yaml:"marital_status" json:"marital_status" validate:"required"`
	Dependents    *int   `yaml:"dependents" json:"dependents" validate:"required,gte=0"`

	IncludeAllowances *bool `yaml:"is_salary_allowances" json:"is_salary_allowances" validate:"required"`
	Accident          *bool `yaml:"accident_insurance_status" json:"accident_insurance_status" validate:"required"`
	Pension           *bool `yaml:"pension_insurance_status" json:"pension_insurance_status" validate:"required"`
	OldAge            *bool `yaml:"old_age_insurance_status" json:"old_age_insurance_status" validate:"required"`
	Death             *bool `yaml:"death_insurance_status" json:"death_insurance_status" validate:"required"`
	Health            *bool `yaml:"health_insurance_status" json:"health_insurance_status" validate:"required"`

	IndustryRiskRate *float64 `yaml:"industry_risk_rate" json:"industry_risk_rate" validate:"required,gte=0,lte=100"`
}

// =============================================================================
// DECODING
// =============================================================================

// Format selects the encoding of a profile or payroll file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor infers the encoding from a file extension. Anything that is not
// .json is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// decodeStrict decodes r into v rejecting unknown keys.
func decodeStrict(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(r)
		decoder.DisallowUnknownFields()
		return decoder.Decode(v)
	default:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		return decoder.Decode(v)
	}
}

// ParseProfile decodes and validates one profile.
func ParseProfile(r io.Reader, format Format) (payroll.Profile, error) {
	var pf ProfileFile
	if err := decodeStrict(r, format, &pf); err != nil {
		if errors.Is(err, io.EOF) {
			return payroll.Profile{}, fmt.Errorf("%w: empty profile", generic.ErrInvalidProfile)
		}
		return payroll.Profile{}, fmt.Errorf("%w: failed to parse profile: %w", generic.ErrInvalidProfile, err)
	}
	return FromProfileFile(pf)
}

// LoadProfile reads a profile from path, picking the format by extension.
func LoadProfile(path string) (payroll.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseProfile(bytes.NewReader(data), FormatFor(path))
}

// FromProfileFile validates pf and converts it to a payroll.Profile.
func FromProfileFile(pf ProfileFile) (payroll.Profile, error) {
	if err := validateProfileStruct(pf); err != nil {
		return payroll.Profile{}, err
	}

	start, err := generic.ParseDate(pf.StartDate)
	if err != nil {
		return payroll.Profile{}, fmt.Errorf("%w: start_work_date: %w", generic.ErrInvalidProfile, err)
	}
	end, err := generic.ParseDate(pf.EndDate)
	if err != nil {
		return payroll.Profile{}, fmt.Errorf("%w: end_work_date: %w", generic.ErrInvalidProfile, err)
	}

	p := payroll.Profile{
		EmployeeID:              pf.EmployeeID,
		BaseSalary:              dec(*pf.BaseSalary),
		FixedAllowances:         decimalMap(pf.FixedAllowances),
		NonFixedAllowances:      decimalMap(pf.NonFixedAllowances),
		Overtime:                dec(pf.Overtime),
		Bonus:                   dec(pf.Bonus),
		IncludeAllowancesInBase: *pf.IncludeAllowances,
		TaxMethod:               payroll.TaxMethod(pf.TaxMethod),
		HasTaxpayerID:           *pf.NPWP,
		MaritalStatus:           payroll.ParseMaritalStatus(pf.MaritalStatus),
		Dependents:              *pf.Dependents,
		StartDate:               start,
		EndDate:                 end,
		Enrollment: payroll.Enrollment{
			OldAge:   *pf.OldAge,
			Pension:  *pf.Pension,
			Health:   *pf.Health,
			Death:    *pf.Death,
			Accident: *pf.Accident,
		},
		IndustryRiskRate: dec(*pf.IndustryRiskRate),
	}

	if err := p.Validate(); err != nil {
		return payroll.Profile{}, err
	}
	return p, nil
}

func validateProfileStruct(v any) error {
	return payroll.ValidateStruct(generic.ErrInvalidProfile, v)
}

func decimalMap(m map[string]float64) map[string]decimal.Decimal {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = dec(v)
	}
	return out
}
