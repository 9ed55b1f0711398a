package avantis

import (
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Minimal ABIs for the Avantis Trading and TradingStorage contracts on
// Base: only the methods we call.

func mustTradingABI() io.Reader {
	return strings.NewReader(`[
		{
			"name": "openTrade",
			"type": "function",
			"stateMutability": "payable",
			"inputs": [
				{"name": "t", "type": "tuple", "components": [
					{"name": "trader",           "type": "address"},
					{"name": "pairIndex",        "type": "uint256"},
					{"name": "index",            "type": "uint256"},
					{"name": "initialPosToken",  "type": "uint256"},
					{"name": "positionSizeUSDC", "type": "uint256"},
					{"name": "openPrice",        "type": "uint256"},
					{"name": "buy",              "type": "bool"},
					{"name": "leverage",         "type": "uint256"},
					{"name": "tp",               "type": "uint256"},
					{"name": "sl",               "type": "uint256"},
					{"name": "timestamp",        "type": "uint256"}
				]},
				{"name": "orderType", "type": "uint8"},
				{"name": "slippageP", "type": "uint256"}
			],
			"outputs": []
		},
		{
			"name": "closeTradeMarket",
			"type": "function",
			"stateMutability": "payable",
			"inputs": [
				{"name": "pairIndex", "type": "uint256"},
				{"name": "index",     "type": "uint256"},
				{"name": "amount",    "type": "uint256"}
			],
			"outputs": []
		},
		{
			"name": "updateTpAndSl",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "pairIndex", "type": "uint256"},
				{"name": "index",     "type": "uint256"},
				{"name": "newSl",     "type": "uint256"},
				{"name": "newTp",     "type": "uint256"}
			],
			"outputs": []
		},
		{
			"name": "setDelegate",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [{"name": "delegate", "type": "address"}],
			"outputs": []
		},
		{
			"name": "removeDelegate",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [],
			"outputs": []
		},
		{
			"name": "delegatedAction",
			"type": "function",
			"stateMutability": "payable",
			"inputs": [
				{"name": "trader",   "type": "address"},
				{"name": "callData", "type": "bytes"}
			],
			"outputs": [{"name": "", "type": "bytes"}]
		},
		{
			"name": "delegations",
			"type": "function",
			"stateMutability": "view",
			"inputs": [{"name": "trader", "type": "address"}],
			"outputs": [{"name": "", "type": "address"}]
		},
		{
			"name": "executionFee",
			"type": "function",
			"stateMutability": "view",
			"inputs": [],
			"outputs": [{"name": "", "type": "uint256"}]
		}
	]`)
}

func mustStorageABI() io.Reader {
	return strings.NewReader(`[
		{
			"name": "openTradesCount",
			"type": "function",
			"stateMutability": "view",
			"inputs": [
				{"name": "trader",    "type": "address"},
				{"name": "pairIndex", "type": "uint256"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "openTrades",
			"type": "function",
			"stateMutability": "view",
			"inputs": [
				{"name": "trader",    "type": "address"},
				{"name": "pairIndex", "type": "uint256"},
				{"name": "index",     "type": "uint256"}
			],
			"outputs": [
				{"name": "t", "type": "tuple", "components": [
					{"name": "trader",           "type": "address"},
					{"name": "pairIndex",        "type": "uint256"},
					{"name": "index",            "type": "uint256"},
					{"name": "initialPosToken",  "type": "uint256"},
					{"name": "positionSizeUSDC", "type": "uint256"},
					{"name": "openPrice",        "type": "uint256"},
					{"name": "buy",              "type": "bool"},
					{"name": "leverage",         "type": "uint256"},
					{"name": "tp",               "type": "uint256"},
					{"name": "sl",               "type": "uint256"},
					{"name": "timestamp",        "type": "uint256"}
				]}
			]
		}
	]`)
}

func mustERC20ABI() io.Reader {
	return strings.NewReader(`[
		{
			"name": "allowance",
			"type": "function",
			"stateMutability": "view",
			"inputs": [
				{"name": "_owner",   "type": "address"},
				{"name": "_spender", "type": "address"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "approve",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "_spender", "type": "address"},
				{"name": "_value",   "type": "uint256"}
			],
			"outputs": [{"name": "", "type": "bool"}]
		}
	]`)
}

// tradeTuple mirrors the contract's trade struct field for field; the abi
// package matches these names when packing and unpacking.
type tradeTuple struct {
	Trader           common.Address
	PairIndex        *big.Int
	Index            *big.Int
	InitialPosToken  *big.Int
	PositionSizeUSDC *big.Int
	OpenPrice        *big.Int
	Buy              bool
	Leverage         *big.Int
	Tp               *big.Int
	Sl               *big.Int
	Timestamp        *big.Int
}
