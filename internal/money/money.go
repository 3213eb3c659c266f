// Package money converts between rupees (major unit) and paise (minor unit).
//
// Amounts travel as decimal values, never as binary floats, and are rounded
// half-up to the nearest paisa on the way in. Conversion back is exact.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// MinorPerMajor is the number of paise in a rupee.
const MinorPerMajor = 100

var (
	minorFactor = decimal.NewFromInt(MinorPerMajor)
	maxMinor    = decimal.NewFromInt(math.MaxInt64)
)

var (
	// ErrNegativeAmount is returned for negative amounts.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrAmountTooLarge is returned when the paise value does not fit in int64.
	ErrAmountTooLarge = errors.New("amount is too large")
)

// ToMinor converts rupees to paise, rounding half-up: 1.005 -> 101.
func ToMinor(rupees decimal.Decimal) (int64, error) {
	if rupees.IsNegative() {
		return 0, ErrNegativeAmount
	}
	// Round is half away from zero which equals half-up for non-negative values
	paise := rupees.Mul(minorFactor).Round(0)
	if paise.GreaterThan(maxMinor) {
		return 0, ErrAmountTooLarge
	}
	return paise.IntPart(), nil
}

// ParseMajor parses a rupee amount like "1000" or "99.50" into paise.
func ParseMajor(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return ToMinor(d)
}

// ToMajor converts paise to rupees exactly.
func ToMajor(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

// Format renders paise as a rupee string with the rupee sign, e.g. ₹1,000.50.
func Format(paise int64) string {
	major := ToMajor(paise)
	whole := major.Truncate(0).Abs().String()
	frac := major.Sub(major.Truncate(0)).Abs()

	grouped := groupIndian(whole)
	if frac.IsZero() {
		return "₹" + grouped
	}
	return "₹" + grouped + frac.StringFixed(2)[1:]
}

// groupIndian applies Indian digit grouping: 12,34,567.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var out []byte
	for i := len(head); i > 0; i -= 2 {
		start := i - 2
		if start < 0 {
			start = 0
		}
		if len(out) > 0 {
			out = append([]byte(","), out...)
		}
		out = append([]byte(head[start:i]), out...)
	}
	return string(out) + "," + tail
}
