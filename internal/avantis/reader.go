package avantis

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/models"
)

// contractCaller is the read-only RPC surface the reader needs.
type contractCaller interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Contracts holds the deployed addresses the reader and builder talk to.
type Contracts struct {
	Trading        common.Address
	TradingStorage common.Address
	USDC           common.Address
}

// Reader answers read-only questions about on-chain state: the current
// delegate for a trader, the execution fee, open positions, and USDC
// allowances. Position state is never cached; every call reads fresh.
type Reader struct {
	caller    contractCaller
	contracts Contracts
	trading   abi.ABI
	storage   abi.ABI
	erc20     abi.ABI
	timeout   time.Duration
	logger    *zap.Logger
}

func NewReader(caller contractCaller, contracts Contracts, timeout time.Duration, logger *zap.Logger) (*Reader, error) {
	tABI, err := abi.JSON(mustTradingABI())
	if err != nil {
		return nil, fmt.Errorf("parse trading ABI: %w", err)
	}
	sABI, err := abi.JSON(mustStorageABI())
	if err != nil {
		return nil, fmt.Errorf("parse storage ABI: %w", err)
	}
	eABI, err := abi.JSON(mustERC20ABI())
	if err != nil {
		return nil, fmt.Errorf("parse ERC20 ABI: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reader{
		caller:    caller,
		contracts: contracts,
		trading:   tABI,
		storage:   sABI,
		erc20:     eABI,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Addresses returns the configured contract registry.
func (r *Reader) Addresses() Contracts { return r.contracts }

// Delegate returns the delegate registered for trader, or "" when none
// is set (the contract reports the zero address).
func (r *Reader) Delegate(ctx context.Context, trader string) (string, error) {
	addr, err := parseAddress(trader)
	if err != nil {
		return "", err
	}
	data, err := r.trading.Pack("delegations", addr)
	if err != nil {
		return "", fmt.Errorf("%w: pack delegations: %v", models.ErrEncoding, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	raw, err := r.caller.CallContract(ctx, r.contracts.Trading, data)
	if err != nil {
		return "", fmt.Errorf("%w: delegations: %v", models.ErrChainRead, err)
	}

	var out common.Address
	if err := r.trading.UnpackIntoInterface(&out, "delegations", raw); err != nil {
		return "", fmt.Errorf("%w: decode delegations: %v", models.ErrChainRead, err)
	}
	if out == (common.Address{}) {
		return "", nil
	}
	return out.Hex(), nil
}

// ExecutionFee reads the native-currency fee the exchange charges per
// trade action. There is no fallback: callers must fail rather than
// guess a fee.
func (r *Reader) ExecutionFee(ctx context.Context) (*big.Int, error) {
	data, err := r.trading.Pack("executionFee")
	if err != nil {
		return nil, fmt.Errorf("%w: pack executionFee: %v", models.ErrFeeUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	raw, err := r.caller.CallContract(ctx, r.contracts.Trading, data)
	if err != nil {
		return nil, fmt.Errorf("%w: executionFee: %v", models.ErrFeeUnavailable, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: executionFee returned no data", models.ErrFeeUnavailable)
	}
	return new(big.Int).SetBytes(raw), nil
}

// OpenPositions walks the pair catalog and returns every open trade slot
// for trader. Trade indices are scoped per pair; empty slots (zero
// trader) are skipped.
func (r *Reader) OpenPositions(ctx context.Context, trader string) ([]models.Position, error) {
	addr, err := parseAddress(trader)
	if err != nil {
		return nil, err
	}

	var positions []models.Position
	for _, pair := range Pairs() {
		count, err := r.openTradesCount(ctx, addr, pair.PairIndex)
		if err != nil {
			return nil, fmt.Errorf("%w: openTradesCount %s: %v", models.ErrChainRead, pair.Name, err)
		}
		for i := int64(0); i < count; i++ {
			t, err := r.openTrade(ctx, addr, pair.PairIndex, i)
			if err != nil {
				return nil, fmt.Errorf("%w: openTrades %s[%d]: %v", models.ErrChainRead, pair.Name, i, err)
			}
			if t.Trader == (common.Address{}) {
				continue
			}
			positions = append(positions, models.Position{
				TradeIndex: t.Index.Int64(),
				PairIndex:  pair.PairIndex,
				Pair:       pair.Name,
				Collateral: UnscaleUSDC(t.PositionSizeUSDC),
				Leverage:   int(t.Leverage.Int64()),
				IsLong:     t.Buy,
				OpenPrice:  UnscalePrice(t.OpenPrice),
				TakeProfit: UnscalePrice(t.Tp),
				StopLoss:   UnscalePrice(t.Sl),
				OpenedAt:   t.Timestamp.Int64(),
			})
		}
	}

	r.logger.Debug("open positions read",
		zap.String("trader", addr.Hex()),
		zap.Int("count", len(positions)))
	return positions, nil
}

func (r *Reader) openTradesCount(ctx context.Context, trader common.Address, pairIndex int64) (int64, error) {
	data, err := r.storage.Pack("openTradesCount", trader, big.NewInt(pairIndex))
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	raw, err := r.caller.CallContract(ctx, r.contracts.TradingStorage, data)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(raw).Int64(), nil
}

func (r *Reader) openTrade(ctx context.Context, trader common.Address, pairIndex, tradeIndex int64) (tradeTuple, error) {
	data, err := r.storage.Pack("openTrades", trader, big.NewInt(pairIndex), big.NewInt(tradeIndex))
	if err != nil {
		return tradeTuple{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	raw, err := r.caller.CallContract(ctx, r.contracts.TradingStorage, data)
	if err != nil {
		return tradeTuple{}, err
	}
	// UnpackIntoInterface copies a lone output into the first field of the
	// destination struct, so a single tuple result needs a wrapper struct.
	var out struct{ T tradeTuple }
	if err := r.storage.UnpackIntoInterface(&out, "openTrades", raw); err != nil {
		return tradeTuple{}, err
	}
	return out.T, nil
}

// USDCAllowance returns the trader's USDC allowance for the Trading
// contract, in whole USDC.
func (r *Reader) USDCAllowance(ctx context.Context, trader string) (float64, error) {
	addr, err := parseAddress(trader)
	if err != nil {
		return 0, err
	}
	data, err := r.erc20.Pack("allowance", addr, r.contracts.Trading)
	if err != nil {
		return 0, fmt.Errorf("%w: pack allowance: %v", models.ErrEncoding, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	raw, err := r.caller.CallContract(ctx, r.contracts.USDC, data)
	if err != nil {
		return 0, fmt.Errorf("%w: allowance: %v", models.ErrChainRead, err)
	}
	return UnscaleUSDC(new(big.Int).SetBytes(raw)), nil
}
