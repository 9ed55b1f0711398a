package avantis

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/314yush/yolo-backend/internal/models"
)

// Fixed-point conventions of the trading contract. Prices (and TP/SL)
// are 8-decimal integers, USDC collateral is 6-decimal; leverage and
// slippage are passed raw. Every numeric field that reaches the contract
// goes through Scale, because a mismatched scale is a silent correctness
// bug.
const (
	PriceDecimals int32 = 8
	USDCDecimals  int32 = 6
)

const maxUintBits = 256

// Scale converts a decimal amount to the contract's integer encoding:
// round(d * 10^places). Fails with models.ErrInvalidAmount on negative
// input or a result that does not fit in 256 bits.
func Scale(d decimal.Decimal, places int32) (*big.Int, error) {
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: negative value %s", models.ErrInvalidAmount, d)
	}
	scaled := d.Shift(places).Round(0).BigInt()
	if scaled.BitLen() > maxUintBits {
		return nil, fmt.Errorf("%w: %s overflows uint256 at %d decimals", models.ErrInvalidAmount, d, places)
	}
	return scaled, nil
}

// Unscale inverts Scale. Exact for any integer the contract can hold.
func Unscale(i *big.Int, places int32) decimal.Decimal {
	return decimal.NewFromBigInt(i, -places)
}

func ScalePrice(price decimal.Decimal) (*big.Int, error) {
	return Scale(price, PriceDecimals)
}

func ScaleUSDC(amount decimal.Decimal) (*big.Int, error) {
	return Scale(amount, USDCDecimals)
}

func UnscalePrice(i *big.Int) float64 {
	return Unscale(i, PriceDecimals).InexactFloat64()
}

func UnscaleUSDC(i *big.Int) float64 {
	return Unscale(i, USDCDecimals).InexactFloat64()
}
