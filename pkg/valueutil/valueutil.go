// Package valueutil converts between the ledger's smallest unit and
// human-readable amounts. On-chain comparisons always stay on exact
// integers; decimals are for display and input parsing only.
package valueutil

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// WeiPerEther is the number of smallest units in one whole unit.
var WeiPerEther = decimal.New(1, 18)

func init() {
	decimal.DivisionPrecision = 18
}

// FromWei renders an exact wei amount as a decimal whole-unit string.
func FromWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, 0).Div(WeiPerEther).String()
}

// ToWei parses a whole-unit decimal string into an exact wei amount. Amounts
// with more than 18 fractional digits are rejected rather than rounded.
func ToWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("malformed amount %q: %w", amount, err)
	}
	scaled := d.Mul(WeiPerEther)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %q has more than 18 fractional digits", amount)
	}
	return scaled.BigInt(), nil
}
