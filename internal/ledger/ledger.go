// Package ledger is the narrow boundary to the XRP Ledger: the queries and
// submissions the orchestrators consume, the amount and address rules, and
// the settlement-code catalogue.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/amm"
)

// MaxPageSize bounds history and trust line pages.
const MaxPageSize = 400

//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Ledger=MockLedger,Dialer=MockDialer,Signer=MockSigner

// Ledger is an open connection. Every method is a network round trip.
type Ledger interface {
	// AccountInfo returns *errs.AccountNotFoundError for unknown accounts.
	AccountInfo(ctx context.Context, account string) (*AccountInfo, error)
	// AccountLines returns all trust lines of account, optionally only those with peer.
	AccountLines(ctx context.Context, account, peer string) ([]TrustLine, error)
	// AccountTransactions returns one page of at most limit records, newest
	// first, resuming after marker. A nil marker starts at the newest record.
	AccountTransactions(ctx context.Context, account string, limit int, marker any) (*HistoryPage, error)
	// AMMInfo returns nil, nil when no pool exists for the pair.
	AMMInfo(ctx context.Context, asset1, asset2 amm.Asset) (*PoolState, error)
	// GatewayBalances returns the issuer's outstanding obligations by currency.
	GatewayBalances(ctx context.Context, issuer string) (map[string]decimal.Decimal, error)
	// ServerReserves returns the live reserve requirements.
	ServerReserves(ctx context.Context) (*Reserves, error)
	// SubmitAndWait autofills, signs, submits and blocks until the
	// transaction is validated or can no longer be included.
	SubmitAndWait(ctx context.Context, tx Transaction, signer Signer) (*SubmitResult, error)
	Close() error
}

// Dialer opens a fresh connection per operation.
type Dialer interface {
	Dial(ctx context.Context) (Ledger, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context) (Ledger, error)

func (f DialerFunc) Dial(ctx context.Context) (Ledger, error) { return f(ctx) }

// Signer holds the key material for one account.
type Signer interface {
	Address() string
	// Sign returns the signed blob and transaction hash.
	Sign(tx map[string]any) (blob string, hash string, err error)
}
