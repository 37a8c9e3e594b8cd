package ledgertest

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/metadata"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

// TokenizedAt is the timestamp stamped on records built by TokenizationRecord.
var TokenizedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// NewAsset returns a valid draft asset.
func NewAsset(symbol string, typ rwa.AssetType, totalValue string, totalSupply int64) *rwa.Asset {
	return &rwa.Asset{
		Type:        typ,
		Name:        symbol + " holdings",
		TotalValue:  decimal.RequireFromString(totalValue),
		TokenSymbol: symbol,
		TotalSupply: totalSupply,
	}
}

// TokenizationRecord builds a settled AccountSet carrying asset's metadata.
func TokenizationRecord(tb testing.TB, issuer string, asset *rwa.Asset) ledger.TxRecord {
	tb.Helper()
	memo, err := metadata.Encode(metadata.FromAsset(asset, metadata.Compliance{KYCRequired: true}, issuer, TokenizedAt))
	if err != nil {
		tb.Fatalf("encode metadata: %v", err)
	}
	return ledger.TxRecord{
		Hash:            "5F1C" + asset.TokenSymbol,
		TransactionType: "AccountSet",
		Account:         issuer,
		Result:          string(ledger.TesSUCCESS),
		Validated:       true,
		Memos:           []ledger.Memo{memo},
	}
}

// Tokenize records asset as issued by issuer without submitting anything.
func (l *Ledger) Tokenize(tb testing.TB, issuer string, asset *rwa.Asset) {
	tb.Helper()
	l.AddHistory(issuer, TokenizationRecord(tb, issuer, asset))
}

// AddPayments prepends n settled payments sent by address, pushing older
// records further down its history.
func (l *Ledger) AddPayments(address string, n int) {
	for i := 0; i < n; i++ {
		l.AddHistory(address, ledger.TxRecord{
			Hash:            fmt.Sprintf("9A%062X", i),
			TransactionType: "Payment",
			Account:         address,
			Result:          string(ledger.TesSUCCESS),
			Validated:       true,
		})
	}
}

// Signer is a ledger.Signer that only knows its address. The fake ledger
// never asks it to sign.
type Signer string

var _ ledger.Signer = Signer("")

// Address implements ledger.Signer.
func (s Signer) Address() string { return string(s) }

// Sign implements ledger.Signer.
func (s Signer) Sign(map[string]any) (string, string, error) {
	return "", "", errors.New("ledgertest: signing is not supported")
}
