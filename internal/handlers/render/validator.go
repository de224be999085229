package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	// Tag to check decimal amount is not below zero
	nonNegativeTag = "nonnegative"
	// Tag to check decimal amount has no fractions of the smallest currency unit
	koboTag = "kobo"
)

const koboPlaces = 2

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(useJSONTagNames)

	// Decimals are validated as their string form
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, Number{})
	_ = v.RegisterValidation(nonNegativeTag, validateNonNegative)
	_ = v.RegisterValidation(koboTag, validateKobo)

	return v
}

// Validate struct using its 'validate' tags
func Validate(s any) error {
	return validate.Struct(s)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func decimalValue(field reflect.Value) any {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.String()
	case Number:
		return d.String()
	}
	return nil
}

func validateNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

func validateKobo(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Equal(d.Truncate(koboPlaces))
}
