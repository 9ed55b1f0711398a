package models

import "errors"

// Error taxonomy shared by the builder, price, and PnL packages.
// Producers wrap these with fmt.Errorf("%w: ...") so handlers can
// classify with errors.Is.
var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidLeverage  = errors.New("invalid leverage")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrEncoding         = errors.New("encoding failed")
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrFeeUnavailable   = errors.New("execution fee unavailable")
	ErrChainRead        = errors.New("chain read failed")
)
