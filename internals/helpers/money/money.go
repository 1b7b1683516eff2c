// Package money holds the decimal helpers for every amount the center
// stores: prices, payments and salaries.
package money

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// FromFloat converts a literal amount, rounded to cents.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Ptr returns a pointer to a copy of d.
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// Cents rounds to the two places the numeric(12,2) columns hold. SQL
// aggregates pass through it because SQLite returns SUM as a binary float.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}

// NewValidator returns a validator that checks decimal fields with the
// numeric tags (gte, lte, ...).
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}
