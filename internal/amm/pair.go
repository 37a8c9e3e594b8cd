package amm

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

// Asset identifies one side of a pool. Issuer is empty for the base currency.
type Asset struct {
	Currency string
	Issuer   string
}

// IsBase reports whether the asset is the ledger's native currency.
func (a Asset) IsBase() bool {
	return a.Currency == BaseCurrency && a.Issuer == ""
}

func (a Asset) String() string {
	if a.IsBase() {
		return BaseCurrency
	}
	return a.Currency + "." + a.Issuer
}

// ValidateAssetPair rejects pairs that cannot form a pool.
func ValidateAssetPair(a, b Asset) error {
	if a.IsBase() && b.IsBase() {
		return &errs.InvalidPairError{Asset1: a.String(), Asset2: b.String(), Reason: "cannot pool the base currency against itself"}
	}
	if a == b {
		return &errs.InvalidPairError{Asset1: a.String(), Asset2: b.String(), Reason: "assets must differ"}
	}
	return nil
}

var sqrtEpsilon = decimal.New(1, -25)

// Sqrt computes the square root by Newton iteration. A float estimate seeds
// the iteration only.
func Sqrt(d decimal.Decimal) decimal.Decimal {
	if !d.IsPositive() {
		return decimal.Zero
	}
	two := decimal.NewFromInt(2)
	f, _ := d.Float64()
	x := decimal.NewFromFloat(math.Sqrt(f))
	if !x.IsPositive() {
		x = one
	}
	for i := 0; i < 100; i++ {
		next := x.Add(d.DivRound(x, divPrecision)).DivRound(two, divPrecision)
		if next.Sub(x).Abs().LessThan(sqrtEpsilon) {
			return next
		}
		x = next
	}
	return x
}
