package payroll

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
)

// =============================================================================
// VALIDATOR - Shared struct validator with decimal support
// =============================================================================

var (
	validatorOnce   sync.Once
	structValidator *validator.Validate
)

// Validator returns the package's struct validator. decimal.Decimal fields
// are compared as float64, so tags like `gte=0` work on amounts.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		structValidator = v
	})
	return structValidator
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// ValidateStruct runs tag validation on v and reports failures as a
// generic.FieldError of the given kind.
func ValidateStruct(kind error, v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", kind, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, describeFieldError(fe))
	}
	return &generic.FieldError{Kind: kind, Fields: fields}
}

func describeFieldError(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
}

// =============================================================================
// PROFILE VALIDATION
// =============================================================================

// Validate checks amounts, tax method and the employment window. A window
// that crosses a calendar year is reported as generic.ErrCrossYearPeriod.
func (p Profile) Validate() error {
	if err := ValidateStruct(generic.ErrInvalidProfile, p); err != nil {
		return err
	}
	return p.Period().Validate()
}

// =============================================================================
// CONFIGURATION VALIDATION
// =============================================================================

// Validate checks every rate and cap, then the cross-field rules tags cannot
// express: each marital status has an exemption and the bracket schedule is
// strictly increasing with an unbounded top tier.
func (c *RateConfiguration) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: no rate configuration", generic.ErrInvalidConfiguration)
	}
	if err := ValidateStruct(generic.ErrInvalidConfiguration, c); err != nil {
		return err
	}

	var fields []string
	for _, status := range []MaritalStatus{Single, Married, MarriedWorkingSpouse} {
		if _, ok := c.Exemptions[status]; !ok {
			fields = append(fields, fmt.Sprintf("RateConfiguration.Exemptions missing %s", status))
		}
	}
	fields = append(fields, validateBrackets(c.Brackets)...)

	if len(fields) > 0 {
		return &generic.FieldError{Kind: generic.ErrInvalidConfiguration, Fields: fields}
	}
	return nil
}

func validateBrackets(brackets []Bracket) []string {
	var fields []string
	prevUpTo := decimal.Zero
	for i, b := range brackets {
		last := i == len(brackets)-1
		switch {
		case last && !b.Unbounded():
			fields = append(fields, fmt.Sprintf("Brackets[%d] must be unbounded", i))
		case !last && b.Unbounded():
			fields = append(fields, fmt.Sprintf("Brackets[%d] must have an upper bound", i))
		case !last && !b.UpTo.GreaterThan(prevUpTo):
			fields = append(fields, fmt.Sprintf("Brackets[%d] upper bound %s must exceed %s", i, b.UpTo, prevUpTo))
		}
		if !last && !b.Unbounded() {
			prevUpTo = *b.UpTo
		}
		if i > 0 && !b.Rate.GreaterThan(brackets[i-1].Rate) {
			fields = append(fields, fmt.Sprintf("Brackets[%d] rate %s must exceed %s", i, b.Rate, brackets[i-1].Rate))
		}
	}
	return fields
}
