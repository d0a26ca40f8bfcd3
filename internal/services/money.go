package services

import (
	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest magnitude accepted for a single amount or an
// opening balance.
const MaxAmountCents int64 = 100_000_000_000_000

var maxAmount = decimal.New(MaxAmountCents, -2)

// CentsFromDecimal converts an amount with at most two fractional digits to
// integer cents.
func CentsFromDecimal(amount decimal.Decimal) (int64, error) {
	if !amount.Equal(amount.Truncate(2)) {
		return 0, invalidf("amount %s has more than two decimal places", amount.String())
	}
	if amount.Abs().GreaterThan(maxAmount) {
		return 0, invalidf("amount %s exceeds %s", amount.String(), maxAmount.StringFixed(2))
	}
	return amount.Shift(2).IntPart(), nil
}

func DecimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders cents with exactly two decimal places.
func FormatCents(cents int64) string {
	return DecimalFromCents(cents).StringFixed(2)
}

func positiveCents(amount decimal.Decimal) (int64, error) {
	cents, err := CentsFromDecimal(amount)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, invalidf("amount must be greater than zero")
	}
	return cents, nil
}
