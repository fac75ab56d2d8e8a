package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// SignificantDigits is the precision every arithmetic result is rounded to.
	SignificantDigits = 10
	// DefaultPrecision is the number of fraction digits used for currency display.
	DefaultPrecision = 2

	divisionScale = 34
)

var (
	ErrArithmetic     = errors.New("arithmetic error")
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrArithmetic)
)

// Round rounds d to SignificantDigits significant digits, ties away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	abs := d.Abs()
	intDigits := len(abs.Coefficient().String()) + int(abs.Exponent())
	return d.Round(int32(SignificantDigits - intDigits))
}

func Add(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Add(b))
}

func Sub(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Sub(b))
}

func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// Div returns a / b, or ErrDivisionByZero when b is zero.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return Round(a.DivRound(b, divisionScale)), nil
}

// Sum folds values left with Add starting from zero.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = Add(total, v)
	}
	return total
}

// Average returns the mean of values, zero for an empty slice.
func Average(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	avg, _ := Div(Sum(values), decimal.NewFromInt(int64(len(values))))
	return avg
}

// Profit is revenue (weight * unitPrice) minus expense.
func Profit(weight, unitPrice, expense decimal.Decimal) decimal.Decimal {
	return Sub(Mul(weight, unitPrice), expense)
}

// Format renders amount with a fixed number of fraction digits.
func Format(amount decimal.Decimal, precision int32) string {
	return amount.StringFixed(precision)
}

// FormatCurrency renders amount with DefaultPrecision fraction digits.
func FormatCurrency(amount decimal.Decimal) string {
	return Format(amount, DefaultPrecision)
}
