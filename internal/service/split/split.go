// Package split divides an incoming payment into savings and spending parts.
//
// Amounts are kept in decimal, savings are rounded half-up to the smallest
// currency unit (kobo, two decimal places) and spending is whatever remains,
// so savings + spending always equals the paid amount exactly.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/autosave/internal/apperrors"
)

// Number of decimal places of the smallest currency unit
const MinorUnitPlaces = 2

// Default share of each payment that goes to savings
var DefaultPercentage = decimal.RequireFromString("0.20")

type Result struct {
	Savings  decimal.Decimal
	Spending decimal.Decimal
}

// Split computes savings = round(amountPaid * percentage) and spending = amountPaid - savings
// Amount must be non-negative whole kobo and percentage in [0, 1]
func Split(amountPaid decimal.Decimal, percentage decimal.Decimal) (Result, error) {
	if err := ValidatePercentage(percentage); err != nil {
		return Result{}, err
	}
	if amountPaid.IsNegative() {
		return Result{}, fmt.Errorf("amount %s is negative: %w", amountPaid, apperrors.ErrInvalidSplit)
	}
	if !IsMinorUnits(amountPaid) {
		return Result{}, fmt.Errorf("amount %s has fractions of kobo: %w", amountPaid, apperrors.ErrInvalidSplit)
	}

	// Round is half away from zero, which is half-up for non-negative values
	savings := amountPaid.Mul(percentage).Round(MinorUnitPlaces)

	return Result{
		Savings:  savings,
		Spending: amountPaid.Sub(savings),
	}, nil
}

// IsMinorUnits reports whether amount has no more than MinorUnitPlaces significant decimals
func IsMinorUnits(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MinorUnitPlaces))
}

func ValidatePercentage(percentage decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("percentage %s not in [0, 1]: %w", percentage, apperrors.ErrInvalidSplit)
	}
	return nil
}
