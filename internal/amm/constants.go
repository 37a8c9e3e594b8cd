package amm

import "github.com/shopspring/decimal"

// AMM constants matching rippled
const (
	// TradingFeeThreshold is the maximum trading fee (1000 = 1%)
	TradingFeeThreshold uint16 = 1000

	// DefaultBidIncrement is the minimum auction slot outbid step (1000 = 1%)
	DefaultBidIncrement uint16 = 1000

	// BaseCurrency is the ledger's native asset
	BaseCurrency = "XRP"
)

// AMMDeposit flags
const (
	TfLPToken         uint32 = 0x00010000
	TfSingleAsset     uint32 = 0x00080000
	TfTwoAsset        uint32 = 0x00100000
	TfOneAssetLPToken uint32 = 0x00200000
	TfLimitLPToken    uint32 = 0x00400000
	TfTwoAssetIfEmpty uint32 = 0x00800000
)

// AMMWithdraw flags
const (
	TfWithdrawAll         uint32 = 0x00020000
	TfOneAssetWithdrawAll uint32 = 0x00040000
)

// Fee values are expressed in units of 1/100000.
var feeDenominator = decimal.NewFromInt(100000)

// divPrecision is the number of decimal places kept on division.
const divPrecision int32 = 30

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)
