package avantis

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/314yush/yolo-backend/internal/models"
)

// Assembler shapes calldata into canonical unsigned transactions. Gas
// and nonce are the signer's concern and are never touched here.
type Assembler struct {
	enc     *Encoder
	chainID int64
	usdc    common.Address
}

func NewAssembler(enc *Encoder, chainID int64, usdcAddr string) (*Assembler, error) {
	usdc, err := parseAddress(usdcAddr)
	if err != nil {
		return nil, err
	}
	return &Assembler{enc: enc, chainID: chainID, usdc: usdc}, nil
}

// BuildTransaction returns the unsigned-transaction record for calldata
// aimed at contract, carrying nativeValue wei. Assembly is atomic: it
// either returns a complete record or an error.
func (a *Assembler) BuildTransaction(contract common.Address, calldata []byte, nativeValue *big.Int) (models.UnsignedTransaction, error) {
	if len(calldata) == 0 {
		return models.UnsignedTransaction{}, fmt.Errorf("%w: refusing to assemble empty calldata", models.ErrEncoding)
	}
	if nativeValue == nil {
		nativeValue = big.NewInt(0)
	}
	if nativeValue.Sign() < 0 {
		return models.UnsignedTransaction{}, fmt.Errorf("%w: negative native value", models.ErrInvalidAmount)
	}
	return models.UnsignedTransaction{
		To:      contract.Hex(),
		Data:    hexutil.Encode(calldata),
		Value:   hexutil.EncodeBig(nativeValue),
		ChainID: a.chainID,
	}, nil
}

// BuildApprovalTransaction builds a max-uint256 USDC approval for
// spender. Recipient is always the USDC token contract, value zero.
func (a *Assembler) BuildApprovalTransaction(spender common.Address) (models.UnsignedTransaction, error) {
	data, err := a.enc.EncodeApprove(spender.Hex())
	if err != nil {
		return models.UnsignedTransaction{}, err
	}
	return a.BuildTransaction(a.usdc, data, big.NewInt(0))
}
