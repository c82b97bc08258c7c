package statement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparseableAmount is returned when an amount cell is not a number.
var ErrUnparseableAmount = errors.New("unparseable amount")

var amountCleaner = strings.NewReplacer(
	"\u00a0", "", // no-break space
	"\u202f", "", // narrow no-break space
	" ", "",
	"\t", "",
	"\u20bd", "", // ruble sign
	"\u2212", "-", // minus sign
	",", ".",
)

// ParseAmount normalizes a bank amount ("1 500,75", "-250.00") into a
// signed decimal. Clean values are returned unchanged.
func ParseAmount(value string) (decimal.Decimal, error) {
	clean := amountCleaner.Replace(strings.TrimSpace(value))
	clean = strings.TrimPrefix(clean, "+")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrUnparseableAmount)
	}

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseableAmount, value)
	}
	return amount, nil
}
