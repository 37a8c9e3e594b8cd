// Package rwa models tokenized real-world assets and the rules an asset must
// satisfy before it is issued.
package rwa

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

// AssetType classifies the underlying asset.
type AssetType string

const (
	RealEstate AssetType = "real_estate"
	Treasury   AssetType = "treasury"
	Commodity  AssetType = "commodity"
	Bond       AssetType = "bond"
)

// AssetTypes lists every supported type in display order.
var AssetTypes = []AssetType{RealEstate, Treasury, Commodity, Bond}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	for _, k := range AssetTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Bounds enforced on issuance.
var (
	MinTotalValue    = decimal.NewFromInt(1_000)
	MaxTotalValue    = decimal.NewFromInt(1_000_000_000)
	MinTotalSupply   = int64(100)
	MaxTotalSupply   = int64(100_000_000)
	MinPricePerToken = decimal.RequireFromString("0.01")
	MaxYieldRate     = decimal.NewFromInt(50)
)

// ReservedSymbols may not be used as token symbols.
var ReservedSymbols = map[string]struct{}{
	"XRP": {}, "USD": {}, "EUR": {}, "BTC": {}, "ETH": {},
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{3}$`)

// Asset is a tokenized real-world asset.
type Asset struct {
	ID          AssetID          `json:"id"`
	Type        AssetType        `json:"type"`
	Name        string           `json:"name"`
	TotalValue  decimal.Decimal  `json:"totalValue"`
	TokenSymbol string           `json:"tokenSymbol"`
	TotalSupply int64            `json:"totalSupply"`
	YieldRate   *decimal.Decimal `json:"yieldRate,omitempty"`
}

// PricePerToken is TotalValue / TotalSupply.
func (a *Asset) PricePerToken() decimal.Decimal {
	return PricePerToken(a.TotalValue, a.TotalSupply)
}

// PricePerToken divides value across supply. Zero supply yields zero.
func PricePerToken(totalValue decimal.Decimal, totalSupply int64) decimal.Decimal {
	if totalSupply <= 0 {
		return decimal.Zero
	}
	return totalValue.DivRound(decimal.NewFromInt(totalSupply), 18)
}

// ValidateTokenSymbol checks the 3-character format and the reserved list.
func ValidateTokenSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return errs.Invalid("tokenSymbol", "%q must be exactly 3 uppercase letters or digits", symbol)
	}
	if _, reserved := ReservedSymbols[symbol]; reserved {
		return errs.Invalid("tokenSymbol", "%q is reserved", symbol)
	}
	return nil
}

// Validate checks every issuance rule on the draft asset.
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errs.Invalid("name", "must not be empty")
	}
	if len(a.Name) > 100 {
		return errs.Invalid("name", "must be at most 100 characters")
	}
	if !a.Type.Valid() {
		return errs.Invalid("type", "%q is not one of real_estate, treasury, commodity, bond", a.Type)
	}
	if err := ValidateTokenSymbol(a.TokenSymbol); err != nil {
		return err
	}
	if a.TotalValue.LessThan(MinTotalValue) || a.TotalValue.GreaterThan(MaxTotalValue) {
		return errs.Invalid("totalValue", "must be between %s and %s USD", MinTotalValue, MaxTotalValue)
	}
	if a.TotalSupply < MinTotalSupply || a.TotalSupply > MaxTotalSupply {
		return errs.Invalid("totalSupply", "must be between %d and %d", MinTotalSupply, MaxTotalSupply)
	}
	if a.PricePerToken().LessThan(MinPricePerToken) {
		return errs.Invalid("totalSupply", "price per token %s is below the %s floor", a.PricePerToken().StringFixed(4), MinPricePerToken)
	}
	if a.YieldRate != nil {
		if a.YieldRate.IsNegative() || a.YieldRate.GreaterThan(MaxYieldRate) {
			return errs.Invalid("yieldRate", "must be between 0 and %s percent", MaxYieldRate)
		}
	}
	return nil
}
