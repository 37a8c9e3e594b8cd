// Package amm implements constant-product pool math on fixed-precision decimals.
// All functions are pure.
package amm

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

// ErrInsufficientLiquidity is returned when a requested output would drain the pool.
var ErrInsufficientLiquidity = errors.New("requested output meets or exceeds pool reserve")

// ErrEmptyPool is returned when a computation needs a non-empty pool.
var ErrEmptyPool = errors.New("pool has no liquidity")

// FeeFraction converts a trading fee (0-1000) to a fraction.
// 1000 = 1% = 0.01
func FeeFraction(fee uint16) decimal.Decimal {
	return decimal.NewFromInt(int64(fee)).Div(feeDenominator)
}

// ValidateFee reports whether fee is within the ledger's allowed range.
func ValidateFee(fee uint16) error {
	if fee > TradingFeeThreshold {
		return errs.Invalid("tradingFee", "must be between 0 and %d (1%%), got %d", TradingFeeThreshold, fee)
	}
	return nil
}

// SwapOut returns the input required to receive desiredOut from the pool.
// requiredIn = desiredOut*poolIn/(poolOut-desiredOut) * (1+fee)
// Requests at or above the output reserve have no solution.
func SwapOut(desiredOut, poolIn, poolOut decimal.Decimal, fee uint16) (decimal.Decimal, error) {
	if !desiredOut.IsPositive() {
		return decimal.Zero, errs.Invalid("amount", "desired output must be positive")
	}
	if desiredOut.GreaterThanOrEqual(poolOut) {
		return decimal.Zero, ErrInsufficientLiquidity
	}
	base := desiredOut.Mul(poolIn).DivRound(poolOut.Sub(desiredOut), divPrecision)
	return base.Mul(one.Add(FeeFraction(fee))), nil
}

// SwapIn returns the output received for amountIn. The fee is taken from the
// input before pricing.
func SwapIn(amountIn, poolIn, poolOut decimal.Decimal, fee uint16) decimal.Decimal {
	if !amountIn.IsPositive() || !poolOut.IsPositive() {
		return decimal.Zero
	}
	afterFee := amountIn.Mul(one.Sub(FeeFraction(fee)))
	return afterFee.Mul(poolOut).DivRound(poolIn.Add(afterFee), divPrecision)
}

// LPTokensFromDeposit returns the LP tokens issued for depositAmount of one
// side of the pool. The first deposit into an empty pool seeds
// sqrt(depositAmount). Single-asset deposits are reduced by the trading fee.
func LPTokensFromDeposit(depositAmount, poolBalance, totalLPTokens decimal.Decimal, balanced bool, fee uint16) decimal.Decimal {
	if totalLPTokens.IsZero() {
		return Sqrt(depositAmount)
	}
	if !poolBalance.IsPositive() {
		return decimal.Zero
	}
	lp := depositAmount.DivRound(poolBalance, divPrecision).Mul(totalLPTokens)
	if !balanced {
		lp = lp.Mul(one.Sub(FeeFraction(fee)))
	}
	return lp
}

// BalancedDepositLPTokens returns the LP tokens for a two-asset deposit. The
// smaller of the two shares decides, so a mismatched ratio never over-claims.
func BalancedDepositLPTokens(amount1, amount2, pool1, pool2, totalLPTokens decimal.Decimal) decimal.Decimal {
	if totalLPTokens.IsZero() {
		return InitialLPTokens(amount1, amount2)
	}
	if !pool1.IsPositive() || !pool2.IsPositive() {
		return decimal.Zero
	}
	share1 := amount1.DivRound(pool1, divPrecision)
	share2 := amount2.DivRound(pool2, divPrecision)
	return decimal.Min(share1, share2).Mul(totalLPTokens)
}

// InitialLPTokens is the LP balance minted by pool creation, sqrt(amount1*amount2).
func InitialLPTokens(amount1, amount2 decimal.Decimal) decimal.Decimal {
	return Sqrt(amount1.Mul(amount2))
}

// AssetsFromLPTokens returns the proportional share of both reserves for lpIn.
func AssetsFromLPTokens(lpIn, totalLPTokens, pool1, pool2 decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !totalLPTokens.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	share := lpIn.DivRound(totalLPTokens, divPrecision)
	return pool1.Mul(share), pool2.Mul(share)
}

// PriceImpact returns the trade's impact on the pool as a percentage.
func PriceImpact(tradeAmount, poolBalance decimal.Decimal) decimal.Decimal {
	denom := poolBalance.Add(tradeAmount)
	if !denom.IsPositive() {
		return decimal.Zero
	}
	return tradeAmount.DivRound(denom, divPrecision).Mul(hundred)
}

// MinimumAuctionBid returns the smallest bid that outbids currentBid.
func MinimumAuctionBid(currentBid decimal.Decimal, increment uint16) decimal.Decimal {
	return currentBid.Mul(one.Add(FeeFraction(increment)))
}

// SpotPrice is the price of one unit of the first asset in the second.
func SpotPrice(pool1, pool2 decimal.Decimal) decimal.Decimal {
	if !pool1.IsPositive() {
		return decimal.Zero
	}
	return pool2.DivRound(pool1, divPrecision)
}

// MinimumReceive applies a slippage tolerance (fraction, e.g. 0.01) to an
// expected output.
func MinimumReceive(expected, tolerance decimal.Decimal) decimal.Decimal {
	return expected.Mul(one.Sub(tolerance))
}

// RealizedSlippage is the fractional shortfall of actual against expected.
// Negative values mean the trade did better than estimated.
func RealizedSlippage(expected, actual decimal.Decimal) decimal.Decimal {
	if !expected.IsPositive() {
		return decimal.Zero
	}
	return expected.Sub(actual).DivRound(expected, divPrecision)
}

// SingleAssetLPTokensOut calculates LP tokens issued for a single-asset deposit.
// Equation 4: t = T * ((1 + a/(A*(1-tfee)))^0.5 - 1)
func SingleAssetLPTokensOut(assetBalance, amountIn, lptBalance decimal.Decimal, fee uint16) decimal.Decimal {
	if !assetBalance.IsPositive() || !lptBalance.IsPositive() {
		return decimal.Zero
	}
	effective := amountIn.DivRound(assetBalance.Mul(one.Sub(FeeFraction(fee))), divPrecision)
	return lptBalance.Mul(Sqrt(one.Add(effective)).Sub(one))
}

// SingleAssetOut calculates the asset received for burning LP tokens into one side.
// Equation 8: a = A * (1 - (1 - t/T)^2) * (1 - tfee)
func SingleAssetOut(assetBalance, lptBalance, lpTokensIn decimal.Decimal, fee uint16) decimal.Decimal {
	if !lptBalance.IsPositive() || lpTokensIn.GreaterThan(lptBalance) {
		return decimal.Zero
	}
	ratio := one.Sub(lpTokensIn.DivRound(lptBalance, divPrecision))
	factor := one.Sub(ratio.Mul(ratio)).Mul(one.Sub(FeeFraction(fee)))
	return assetBalance.Mul(factor)
}
