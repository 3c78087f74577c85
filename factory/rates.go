/*
Package factory converts rate tables and employee profiles from files into
validated payroll types.

PURPOSE:
  Payroll administrators maintain the statutory parameters as YAML and the
  employee records as YAML or JSON. The factory decodes them strictly,
  validates them, and builds payroll.RateConfiguration and payroll.Profile
  values the engine consumes.

STRICTNESS:
  - Unknown keys are rejected (yaml KnownFields, json DisallowUnknownFields)
  - Every statutory parameter is required; nothing is defaulted
  - Failures wrap generic.ErrInvalidConfiguration or generic.ErrInvalidProfile
    and list the offending fields

RATE TABLE SCHEMA:
  health_max_fee: 8000000
  pension_max_fee: 8094000
  old_pension_max_fee: 7703500          # optional, with _until
  old_pension_max_fee_until: {year: 2018, month: 2}
  individual_health_insurance_rate: 0.01
  company_health_insurance_rate: 0.04
  death_insurance_rate: 0.003
  individual_old_age_insurance_rate: 0.02
  company_old_age_insurance_rate: 0.037
  individual_pension_insurance_rate: 0.01
  company_pension_insurance_rate: 0.02
  max_occupation_support: 6000000
  occupation_support_rate: 0.05
  tax_exemption_grade: {SINGLE: ..., MARRIED: ..., MARRIED_CI: ..., PERSON: ...}
  pph_grade_rate: {first: ..., second: ..., third: ..., fourth: ...}
  pph_grade_range: {first: ..., second: ..., third: ...}

USAGE:
  cfg, err := factory.LoadRates("rates_2019.yaml")
  cfg := factory.DefaultRates() // the 2018 table, built in Go

SEE ALSO:
  - profile.go: Employee profile decoding
  - payroll/rates.go: RateConfiguration
*/
package factory

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
	"github.com/warp/pph21-engine/payroll"
	"gopkg.in/yaml.v3"
)

//go:embed rates_2018.yaml
var rates2018 []byte

// =============================================================================
// RATE TABLE SCHEMA
// =============================================================================

// RatesFile is the on-disk representation of a rate table.
type RatesFile struct {
	HealthMaxFee      *float64   `yaml:"health_max_fee" validate:"required,gt=0"`
	PensionMaxFee     *float64   `yaml:"pension_max_fee" validate:"required,gt=0"`
	OldPensionMaxFee  *float64   `yaml:"old_pension_max_fee,omitempty" validate:"omitempty,gt=0"`
	OldPensionUntil   *MonthFile `yaml:"old_pension_max_fee_until,omitempty" validate:"omitempty"`
	IndividualHealth  *float64   `yaml:"individual_health_insurance_rate" validate:"required,gte=0,lte=1"`
	CompanyHealth     *float64   `yaml:"company_health_insurance_rate" validate:"required,gte=0,lte=1"`
	Death             *float64   `yaml:"death_insurance_rate" validate:"required,gte=0,lte=1"`
	IndividualOldAge  *float64   `yaml:"individual_old_age_insurance_rate" validate:"required,gte=0,lte=1"`
	CompanyOldAge     *float64   `yaml:"company_old_age_insurance_rate" validate:"required,gte=0,lte=1"`
	IndividualPension *float64   `yaml:"individual_pension_insurance_rate" validate:"required,gte=0,lte=1"`
	CompanyPension    *float64   `yaml:"company_pension_insurance_rate" validate:"required,gte=0,lte=1"`

	MaxOccupationSupport  *float64 `yaml:"max_occupation_support" validate:"required,gte=0"`
	OccupationSupportRate *float64 `yaml:"occupation_support_rate" validate:"required,gte=0,lte=1"`

	Exemptions *ExemptionFile  `yaml:"tax_exemption_grade" validate:"required"`
	Rates      *GradeRateFile  `yaml:"pph_grade_rate" validate:"required"`
	Ranges     *GradeRangeFile `yaml:"pph_grade_range" validate:"required"`
}

// MonthFile is a calendar month: the last month of the pension cap
// transition, or a payroll cycle.
type MonthFile struct {
	Year  int `yaml:"year" json:"year" validate:"gt=0"`
	Month int `yaml:"month" json:"month" validate:"gte=1,lte=12"`
}

type ExemptionFile struct {
	Single               *float64 `yaml:"SINGLE" validate:"required,gte=0"`
	Married              *float64 `yaml:"MARRIED" validate:"required,gte=0"`
	MarriedWorkingSpouse *float64 `yaml:"MARRIED_CI" validate:"required,gte=0"`
	PerDependent         *float64 `yaml:"PERSON" validate:"required,gte=0"`
}

type GradeRateFile struct {
	First  *float64 `yaml:"first" validate:"required,gte=0,lte=1"`
	Second *float64 `yaml:"second" validate:"required,gte=0,lte=1"`
	Third  *float64 `yaml:"third" validate:"required,gte=0,lte=1"`
	Fourth *float64 `yaml:"fourth" validate:"required,gte=0,lte=1"`
}

type GradeRangeFile struct {
	First  *float64 `yaml:"first" validate:"required,gt=0"`
	Second *float64 `yaml:"second" validate:"required,gt=0"`
	Third  *float64 `yaml:"third" validate:"required,gt=0"`
}

// =============================================================================
// LOADING
// =============================================================================

// ParseRates decodes and validates a YAML rate table.
func ParseRates(r io.Reader) (*payroll.RateConfiguration, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var rf RatesFile
	if err := decoder.Decode(&rf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty rate table", generic.ErrInvalidConfiguration)
		}
		return nil, fmt.Errorf("%w: failed to parse rate table: %w", generic.ErrInvalidConfiguration, err)
	}
	return FromRatesFile(rf)
}

// LoadRates reads a YAML rate table from path.
func LoadRates(path string) (*payroll.RateConfiguration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate table: %w", err)
	}
	defer f.Close()
	return ParseRates(f)
}

// EmbeddedRates parses the rate table shipped with the binary.
func EmbeddedRates() (*payroll.RateConfiguration, error) {
	return ParseRates(bytes.NewReader(rates2018))
}

// FromRatesFile validates rf and converts it to a RateConfiguration.
func FromRatesFile(rf RatesFile) (*payroll.RateConfiguration, error) {
	if err := payroll.ValidateStruct(generic.ErrInvalidConfiguration, rf); err != nil {
		return nil, err
	}
	if (rf.OldPensionMaxFee == nil) != (rf.OldPensionUntil == nil) {
		return nil, &generic.FieldError{
			Kind:   generic.ErrInvalidConfiguration,
			Fields: []string{"old_pension_max_fee and old_pension_max_fee_until must be set together"},
		}
	}

	cfg := &payroll.RateConfiguration{
		Health:     rate(*rf.CompanyHealth, *rf.IndividualHealth),
		HealthCap:  dec(*rf.HealthMaxFee),
		OldAge:     rate(*rf.CompanyOldAge, *rf.IndividualOldAge),
		Pension:    rate(*rf.CompanyPension, *rf.IndividualPension),
		PensionCap: dec(*rf.PensionMaxFee),
		DeathRate:  dec(*rf.Death),

		OccupationCostRate: dec(*rf.OccupationSupportRate),
		OccupationCostCap:  dec(*rf.MaxOccupationSupport),

		Exemptions: map[payroll.MaritalStatus]decimal.Decimal{
			payroll.Single:               dec(*rf.Exemptions.Single),
			payroll.Married:              dec(*rf.Exemptions.Married),
			payroll.MarriedWorkingSpouse: dec(*rf.Exemptions.MarriedWorkingSpouse),
		},
		ExemptionPerDependent: dec(*rf.Exemptions.PerDependent),

		Brackets: payroll.NewBrackets(
			[3]decimal.Decimal{dec(*rf.Ranges.First), dec(*rf.Ranges.Second), dec(*rf.Ranges.Third)},
			[4]decimal.Decimal{dec(*rf.Rates.First), dec(*rf.Rates.Second), dec(*rf.Rates.Third), dec(*rf.Rates.Fourth)},
		),
	}

	if rf.OldPensionMaxFee != nil {
		cfg.PensionCapException = &payroll.PensionCapException{
			Cap:          dec(*rf.OldPensionMaxFee),
			Year:         rf.OldPensionUntil.Year,
			ThroughMonth: rf.OldPensionUntil.Month,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToRatesFile converts a configuration back to its file representation.
func ToRatesFile(cfg *payroll.RateConfiguration) RatesFile {
	rf := RatesFile{
		HealthMaxFee:      flt(cfg.HealthCap),
		PensionMaxFee:     flt(cfg.PensionCap),
		IndividualHealth:  flt(cfg.Health.Individual),
		CompanyHealth:     flt(cfg.Health.Company),
		Death:             flt(cfg.DeathRate),
		IndividualOldAge:  flt(cfg.OldAge.Individual),
		CompanyOldAge:     flt(cfg.OldAge.Company),
		IndividualPension: flt(cfg.Pension.Individual),
		CompanyPension:    flt(cfg.Pension.Company),

		MaxOccupationSupport:  flt(cfg.OccupationCostCap),
		OccupationSupportRate: flt(cfg.OccupationCostRate),

		Exemptions: &ExemptionFile{
			Single:               flt(cfg.Exemptions[payroll.Single]),
			Married:              flt(cfg.Exemptions[payroll.Married]),
			MarriedWorkingSpouse: flt(cfg.Exemptions[payroll.MarriedWorkingSpouse]),
			PerDependent:         flt(cfg.ExemptionPerDependent),
		},
	}

	if ex := cfg.PensionCapException; ex != nil {
		rf.OldPensionMaxFee = flt(ex.Cap)
		rf.OldPensionUntil = &MonthFile{Year: ex.Year, Month: ex.ThroughMonth}
	}

	if len(cfg.Brackets) == payroll.BracketCount {
		b := cfg.Brackets
		rf.Rates = &GradeRateFile{First: flt(b[0].Rate), Second: flt(b[1].Rate), Third: flt(b[2].Rate), Fourth: flt(b[3].Rate)}
		rf.Ranges = &GradeRangeFile{First: fltp(b[0].UpTo), Second: fltp(b[1].UpTo), Third: fltp(b[2].UpTo)}
	}
	return rf
}

// =============================================================================
// PRESETS
// =============================================================================

// DefaultRates returns the 2018 rate table. It matches rates_2018.yaml.
func DefaultRates() *payroll.RateConfiguration {
	return &payroll.RateConfiguration{
		Health:     rate(0.04, 0.01),
		HealthCap:  generic.NewAmount(8000000),
		OldAge:     rate(0.037, 0.02),
		Pension:    rate(0.02, 0.01),
		PensionCap: generic.NewAmount(8094000),
		PensionCapException: &payroll.PensionCapException{
			Cap:          generic.NewAmount(7703500),
			Year:         2018,
			ThroughMonth: 2,
		},
		DeathRate: dec(0.003),

		OccupationCostRate: dec(0.05),
		OccupationCostCap:  generic.NewAmount(6000000),

		Exemptions: map[payroll.MaritalStatus]decimal.Decimal{
			payroll.Single:               generic.NewAmount(54000000),
			payroll.Married:              generic.NewAmount(58500000),
			payroll.MarriedWorkingSpouse: generic.NewAmount(112500000),
		},
		ExemptionPerDependent: generic.NewAmount(4500000),

		Brackets: payroll.NewBrackets(
			[3]decimal.Decimal{generic.NewAmount(50000000), generic.NewAmount(250000000), generic.NewAmount(500000000)},
			[4]decimal.Decimal{dec(0.05), dec(0.15), dec(0.25), dec(0.30)},
		),
	}
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func rate(company, individual float64) payroll.ContributionRate {
	return payroll.ContributionRate{Company: dec(company), Individual: dec(individual)}
}

func flt(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}

func fltp(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	return flt(*d)
}
