package avantis

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/models"
	"github.com/314yush/yolo-backend/internal/pnl"
	"github.com/314yush/yolo-backend/internal/risk"
)

// priceSource supplies the current price for open-trade builds.
type priceSource interface {
	GetPrice(ctx context.Context, pair string) (models.PricePoint, error)
}

// feeSource supplies the execution fee a trading transaction must carry.
type feeSource interface {
	ExecutionFee(ctx context.Context) (*big.Int, error)
}

// Builder turns validated trade requests into unsigned transactions:
// price lookup, take-profit derivation, fixed-point scaling, calldata
// encoding, the delegated-action envelope, and final assembly. Any step
// failing aborts the build; no partial transaction is ever returned.
type Builder struct {
	enc     *Encoder
	asm     *Assembler
	fees    feeSource
	prices  priceSource
	guard   *risk.Guardian
	trading common.Address
	logger  *zap.Logger
	now     func() time.Time
}

func NewBuilder(enc *Encoder, asm *Assembler, fees feeSource, prices priceSource, guard *risk.Guardian, trading common.Address, logger *zap.Logger) *Builder {
	return &Builder{
		enc:     enc,
		asm:     asm,
		fees:    fees,
		prices:  prices,
		guard:   guard,
		trading: trading,
		logger:  logger,
		now:     time.Now,
	}
}

// BuildOpenTrade builds a delegated market-open transaction. The entry
// price comes from the price cache, the take-profit from the default
// policy, and the stop loss starts unset.
func (b *Builder) BuildOpenTrade(ctx context.Context, req models.OpenTradeRequest) (models.UnsignedTransaction, error) {
	if err := b.guard.CheckOpen(req); err != nil {
		return models.UnsignedTransaction{}, err
	}

	point, err := b.prices.GetPrice(ctx, req.Pair)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	takeProfit, err := pnl.DefaultTakeProfit(point.Price, req.IsLong, req.Leverage)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	openScaled, err := ScalePrice(decimal.NewFromFloat(point.Price))
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	tpScaled, err := ScalePrice(decimal.NewFromFloat(takeProfit))
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	collateralScaled, err := ScaleUSDC(decimal.NewFromFloat(req.Collateral))
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	inner, err := b.enc.EncodeOpenTrade(OpenTradeCall{
		Trader:       req.Trader,
		PairIndex:    req.PairIndex,
		PositionSize: collateralScaled,
		OpenPrice:    openScaled,
		IsLong:       req.IsLong,
		Leverage:     req.Leverage,
		TakeProfit:   tpScaled,
		StopLoss:     big.NewInt(0),
		Timestamp:    b.now().Unix(),
		OrderType:    OrderTypeMarketZeroFee,
		Slippage:     DefaultSlippagePercent,
	})
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	tx, err := b.wrapAndAssemble(ctx, req.Trader, inner)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	b.logger.Info("open trade tx built",
		zap.String("pair", req.Pair),
		zap.Bool("long", req.IsLong),
		zap.Int("leverage", req.Leverage),
		zap.Float64("collateral", req.Collateral),
		zap.Float64("entry", point.Price),
		zap.Float64("tp", takeProfit),
		zap.Bool("stale_price", point.Stale))
	return tx, nil
}

// BuildCloseTrade builds a delegated market-close for part or all of a
// position's collateral.
func (b *Builder) BuildCloseTrade(ctx context.Context, req models.CloseTradeRequest) (models.UnsignedTransaction, error) {
	if err := b.guard.CheckClose(req); err != nil {
		return models.UnsignedTransaction{}, err
	}

	closeScaled, err := ScaleUSDC(decimal.NewFromFloat(req.CollateralToClose))
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	inner, err := b.enc.EncodeCloseTrade(req.PairIndex, req.TradeIndex, closeScaled)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	tx, err := b.wrapAndAssemble(ctx, req.Trader, inner)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	b.logger.Info("close trade tx built",
		zap.Int64("pair_index", req.PairIndex),
		zap.Int64("trade_index", req.TradeIndex),
		zap.Float64("collateral_to_close", req.CollateralToClose))
	return tx, nil
}

// BuildUpdateTPSL builds a delegated take-profit/stop-loss update.
func (b *Builder) BuildUpdateTPSL(ctx context.Context, req models.UpdateTPSLRequest) (models.UnsignedTransaction, error) {
	if err := b.guard.CheckUpdateTPSL(req); err != nil {
		return models.UnsignedTransaction{}, err
	}

	tpScaled, err := ScalePrice(decimal.NewFromFloat(req.TakeProfit))
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	slScaled, err := ScalePrice(decimal.NewFromFloat(req.StopLoss))
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	inner, err := b.enc.EncodeUpdateTPSL(req.PairIndex, req.TradeIndex, tpScaled, slScaled)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	tx, err := b.wrapAndAssemble(ctx, req.Trader, inner)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}

	b.logger.Info("tp/sl update tx built",
		zap.Int64("pair_index", req.PairIndex),
		zap.Int64("trade_index", req.TradeIndex),
		zap.Float64("tp", req.TakeProfit),
		zap.Float64("sl", req.StopLoss))
	return tx, nil
}

// BuildSetDelegate builds the delegation-registration transaction. The
// trader signs this one directly, so there is no envelope and no
// execution fee.
func (b *Builder) BuildSetDelegate(req models.SetDelegateRequest) (models.UnsignedTransaction, error) {
	data, err := b.enc.EncodeSetDelegate(req.DelegateAddress)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	tx, err := b.asm.BuildTransaction(b.trading, data, big.NewInt(0))
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	b.logger.Info("set delegate tx built", zap.String("delegate", req.DelegateAddress))
	return tx, nil
}

// BuildRemoveDelegate builds the delegation-removal transaction.
func (b *Builder) BuildRemoveDelegate() (models.UnsignedTransaction, error) {
	data, err := b.enc.EncodeRemoveDelegate()
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	return b.asm.BuildTransaction(b.trading, data, big.NewInt(0))
}

// BuildApproval builds the max USDC approval for the Trading contract,
// which is the contract that pulls collateral when positions open.
func (b *Builder) BuildApproval() (models.UnsignedTransaction, error) {
	return b.asm.BuildApprovalTransaction(b.trading)
}

// wrapAndAssemble is the shared tail of every delegated trading build:
// wrap the inner call in delegatedAction, read the execution fee, and
// assemble the final record.
func (b *Builder) wrapAndAssemble(ctx context.Context, trader string, inner []byte) (models.UnsignedTransaction, error) {
	wrapped, err := b.enc.EncodeDelegatedAction(trader, inner)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	fee, err := b.fees.ExecutionFee(ctx)
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	return b.asm.BuildTransaction(b.trading, wrapped, fee)
}
