package tool

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CentsToAmount formats an int64 cent amount as the two-decimal string the
// gateway wire formats expect ("1050" -> "10.50").
func CentsToAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// AmountToCents parses a gateway decimal amount string into cents, rounding
// half-up at two decimals ("10.50" -> 1050).
func AmountToCents(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
