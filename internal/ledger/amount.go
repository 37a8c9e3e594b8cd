package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/amm"
)

// DropsPerXRP is the number of drops in one XRP.
var DropsPerXRP = decimal.NewFromInt(1_000_000)

// issuedPrecision is the number of significant digits an issued amount keeps.
const issuedPrecision = 15

// Amount is a quantity of XRP (Issuer empty) or of an issued currency.
// Value is always in whole units; XRP is converted to drops on the wire.
type Amount struct {
	Currency string          `json:"currency"`
	Issuer   string          `json:"issuer,omitempty"`
	Value    decimal.Decimal `json:"value"`
}

// XRP returns an XRP amount.
func XRP(value decimal.Decimal) Amount {
	return Amount{Currency: amm.BaseCurrency, Value: value}
}

// Issued returns an issued-currency amount.
func Issued(currency, issuer string, value decimal.Decimal) Amount {
	return Amount{Currency: currency, Issuer: issuer, Value: value}
}

// IsNative reports whether the amount is XRP.
func (a Amount) IsNative() bool {
	return a.Issuer == "" && (a.Currency == amm.BaseCurrency || a.Currency == "")
}

// Asset returns the currency/issuer pair of the amount.
func (a Amount) Asset() amm.Asset {
	if a.IsNative() {
		return amm.Asset{Currency: amm.BaseCurrency}
	}
	return amm.Asset{Currency: a.Currency, Issuer: a.Issuer}
}

// Drops returns an XRP amount in drops, truncated.
func (a Amount) Drops() decimal.Decimal {
	return a.Value.Mul(DropsPerXRP).Truncate(0)
}

func (a Amount) String() string {
	if a.IsNative() {
		return a.Value.String() + " XRP"
	}
	return a.Value.String() + " " + a.Currency + "." + a.Issuer
}

// Wire returns the JSON form the ledger expects.
func (a Amount) Wire() any {
	if a.IsNative() {
		return a.Drops().String()
	}
	return map[string]any{
		"currency": a.Currency,
		"issuer":   a.Issuer,
		"value":    FormatIssuedValue(a.Value),
	}
}

// IssueWire returns the currency/issuer object used by AMM fields.
func IssueWire(asset amm.Asset) map[string]any {
	if asset.IsBase() {
		return map[string]any{"currency": amm.BaseCurrency}
	}
	return map[string]any{"currency": asset.Currency, "issuer": asset.Issuer}
}

// FormatIssuedValue truncates to the ledger's 15 significant digits.
func FormatIssuedValue(v decimal.Decimal) string {
	intDigits := len(v.Abs().Truncate(0).String())
	if v.Abs().LessThan(decimal.NewFromInt(1)) {
		intDigits = 0
	}
	places := issuedPrecision - intDigits
	if places < 0 {
		places = 0
	}
	return v.Truncate(int32(places)).String()
}

// ParseAmount decodes a ledger amount: a drops string for XRP or an object
// for issued currencies.
func ParseAmount(raw json.RawMessage) (Amount, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	if raw[0] == '"' {
		var drops string
		if err := json.Unmarshal(raw, &drops); err != nil {
			return Amount{}, fmt.Errorf("decode drops: %w", err)
		}
		d, err := decimal.NewFromString(drops)
		if err != nil {
			return Amount{}, fmt.Errorf("parse drops %q: %w", drops, err)
		}
		return XRP(d.Div(DropsPerXRP)), nil
	}
	var obj struct {
		Currency string `json:"currency"`
		Issuer   string `json:"issuer"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Amount{}, fmt.Errorf("decode issued amount: %w", err)
	}
	v, err := decimal.NewFromString(obj.Value)
	if err != nil {
		return Amount{}, fmt.Errorf("parse value %q: %w", obj.Value, err)
	}
	return Issued(obj.Currency, obj.Issuer, v), nil
}

// IsLPTokenCurrency reports whether a currency code is an AMM LP token code.
func IsLPTokenCurrency(currency string) bool {
	return len(currency) == 40 && strings.HasPrefix(currency, "03")
}
