package avantis

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/314yush/yolo-backend/internal/models"
)

// Order types accepted by openTrade.
const (
	OrderTypeMarket        uint8 = 0
	OrderTypeLimit         uint8 = 1
	OrderTypeStopLimit     uint8 = 2
	OrderTypeMarketZeroFee uint8 = 3
)

// DefaultSlippagePercent is passed raw to openTrade (1 = 1%).
const DefaultSlippagePercent int64 = 1

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Encoder produces calldata for each contract operation. All methods are
// pure; a malformed address or negative integer fails with
// models.ErrEncoding.
type Encoder struct {
	trading abi.ABI
	erc20   abi.ABI
}

func NewEncoder() (*Encoder, error) {
	tABI, err := abi.JSON(mustTradingABI())
	if err != nil {
		return nil, fmt.Errorf("parse trading ABI: %w", err)
	}
	eABI, err := abi.JSON(mustERC20ABI())
	if err != nil {
		return nil, fmt.Errorf("parse ERC20 ABI: %w", err)
	}
	return &Encoder{trading: tABI, erc20: eABI}, nil
}

// OpenTradeCall carries the scaled arguments for an openTrade encoding.
// PositionSize is 6-decimal USDC; OpenPrice, TakeProfit and StopLoss are
// 8-decimal prices; Leverage and Slippage are raw integers.
type OpenTradeCall struct {
	Trader       string
	PairIndex    int64
	PositionSize *big.Int
	OpenPrice    *big.Int
	IsLong       bool
	Leverage     int
	TakeProfit   *big.Int
	StopLoss     *big.Int
	Timestamp    int64
	OrderType    uint8
	Slippage     int64
}

// EncodeOpenTrade packs the 11-field trade struct plus order type and
// slippage into openTrade calldata.
func (e *Encoder) EncodeOpenTrade(c OpenTradeCall) ([]byte, error) {
	trader, err := parseAddress(c.Trader)
	if err != nil {
		return nil, err
	}
	if c.PairIndex < 0 || c.Leverage < 0 || c.Timestamp < 0 || c.Slippage < 0 {
		return nil, fmt.Errorf("%w: negative integer argument for openTrade", models.ErrEncoding)
	}
	for _, v := range []*big.Int{c.PositionSize, c.OpenPrice, c.TakeProfit, c.StopLoss} {
		if v == nil || v.Sign() < 0 {
			return nil, fmt.Errorf("%w: missing or negative scaled amount for openTrade", models.ErrEncoding)
		}
	}

	t := tradeTuple{
		Trader:           trader,
		PairIndex:        big.NewInt(c.PairIndex),
		Index:            big.NewInt(0),
		InitialPosToken:  big.NewInt(0),
		PositionSizeUSDC: c.PositionSize,
		OpenPrice:        c.OpenPrice,
		Buy:              c.IsLong,
		Leverage:         big.NewInt(int64(c.Leverage)),
		Tp:               c.TakeProfit,
		Sl:               c.StopLoss,
		Timestamp:        big.NewInt(c.Timestamp),
	}

	data, err := e.trading.Pack("openTrade", t, c.OrderType, big.NewInt(c.Slippage))
	if err != nil {
		return nil, fmt.Errorf("%w: pack openTrade: %v", models.ErrEncoding, err)
	}
	return data, nil
}

func (e *Encoder) EncodeCloseTrade(pairIndex, tradeIndex int64, collateralToClose *big.Int) ([]byte, error) {
	if pairIndex < 0 || tradeIndex < 0 {
		return nil, fmt.Errorf("%w: negative index for closeTradeMarket", models.ErrEncoding)
	}
	if collateralToClose == nil || collateralToClose.Sign() < 0 {
		return nil, fmt.Errorf("%w: missing or negative close amount", models.ErrEncoding)
	}
	data, err := e.trading.Pack("closeTradeMarket",
		big.NewInt(pairIndex), big.NewInt(tradeIndex), collateralToClose)
	if err != nil {
		return nil, fmt.Errorf("%w: pack closeTradeMarket: %v", models.ErrEncoding, err)
	}
	return data, nil
}

// EncodeUpdateTPSL packs updateTpAndSl. The contract takes the new stop
// loss before the new take profit.
func (e *Encoder) EncodeUpdateTPSL(pairIndex, tradeIndex int64, takeProfit, stopLoss *big.Int) ([]byte, error) {
	if pairIndex < 0 || tradeIndex < 0 {
		return nil, fmt.Errorf("%w: negative index for updateTpAndSl", models.ErrEncoding)
	}
	if takeProfit == nil || takeProfit.Sign() < 0 || stopLoss == nil || stopLoss.Sign() < 0 {
		return nil, fmt.Errorf("%w: missing or negative TP/SL", models.ErrEncoding)
	}
	data, err := e.trading.Pack("updateTpAndSl",
		big.NewInt(pairIndex), big.NewInt(tradeIndex), stopLoss, takeProfit)
	if err != nil {
		return nil, fmt.Errorf("%w: pack updateTpAndSl: %v", models.ErrEncoding, err)
	}
	return data, nil
}

func (e *Encoder) EncodeSetDelegate(delegate string) ([]byte, error) {
	addr, err := parseAddress(delegate)
	if err != nil {
		return nil, err
	}
	data, err := e.trading.Pack("setDelegate", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: pack setDelegate: %v", models.ErrEncoding, err)
	}
	return data, nil
}

func (e *Encoder) EncodeRemoveDelegate() ([]byte, error) {
	data, err := e.trading.Pack("removeDelegate")
	if err != nil {
		return nil, fmt.Errorf("%w: pack removeDelegate: %v", models.ErrEncoding, err)
	}
	return data, nil
}

// EncodeApprove packs an ERC20 approve for the maximum uint256 amount:
// 4 selector bytes, the spender left-padded to 32 bytes, and the 32-byte
// amount.
func (e *Encoder) EncodeApprove(spender string) ([]byte, error) {
	addr, err := parseAddress(spender)
	if err != nil {
		return nil, err
	}
	data, err := e.erc20.Pack("approve", addr, maxUint256)
	if err != nil {
		return nil, fmt.Errorf("%w: pack approve: %v", models.ErrEncoding, err)
	}
	return data, nil
}

// EncodeDelegatedAction wraps inner trading calldata so the contract
// treats trader, not the sender, as the acting party. Every trading
// operation in this system goes through this wrapper.
func (e *Encoder) EncodeDelegatedAction(trader string, inner []byte) ([]byte, error) {
	addr, err := parseAddress(trader)
	if err != nil {
		return nil, err
	}
	if len(inner) == 0 {
		return nil, fmt.Errorf("%w: empty inner calldata for delegatedAction", models.ErrEncoding)
	}
	data, err := e.trading.Pack("delegatedAction", addr, inner)
	if err != nil {
		return nil, fmt.Errorf("%w: pack delegatedAction: %v", models.ErrEncoding, err)
	}
	return data, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: invalid address %q", models.ErrEncoding, s)
	}
	return common.HexToAddress(s), nil
}
