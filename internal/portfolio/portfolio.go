// Package portfolio builds the classified view of an account's holdings:
// every trust line, the asset metadata recovered for it, and the valuation and
// diversification totals derived from them.
package portfolio

import (
	"context"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/metadata"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

// ReserveThreshold is the XRP balance an account should keep to stay healthy.
var ReserveThreshold = decimal.NewFromInt(10)

const (
	defaultWorkers         = 4
	defaultHistoryPageSize = 200
	issuerMemoSize         = 128
)

// Options tunes one aggregation.
type Options struct {
	// Workers bounds concurrent metadata lookups.
	Workers int
	// HistoryPageSize is how many issuer records are requested per page.
	HistoryPageSize int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.HistoryPageSize <= 0 {
		o.HistoryPageSize = defaultHistoryPageSize
	}
	return o
}

// Holding is one trust line seen from the holder's side.
type Holding struct {
	Currency       string             `json:"currency"`
	Issuer         string             `json:"issuer"`
	AssetID        string             `json:"assetId"`
	Balance        decimal.Decimal    `json:"balance"`
	Limit          decimal.Decimal    `json:"limit"`
	QualityIn      uint32             `json:"qualityIn"`
	QualityOut     uint32             `json:"qualityOut"`
	Frozen         bool               `json:"frozen"`
	IsRWAToken     bool               `json:"isRwaToken"`
	IsLPToken      bool               `json:"isLpToken"`
	Metadata       *metadata.Metadata `json:"metadata,omitempty"`
	EstimatedValue decimal.Decimal    `json:"estimatedValue"`
}

// Summary is the result of GetHoldings.
type Summary struct {
	Account         string                `json:"account"`
	XRPBalance      decimal.Decimal       `json:"xrpBalance"`
	OwnerCount      uint32                `json:"ownerCount"`
	Holdings        []Holding             `json:"holdings"`
	TotalRWAValue   decimal.Decimal       `json:"totalRwaValue"`
	Diversification map[rwa.AssetType]int `json:"diversification"`
	ReserveHealthy  bool                  `json:"reserveHealthy"`
	LookupFailures  int                   `json:"lookupFailures"`
}

// RWAHoldings returns the classified holdings.
func (s *Summary) RWAHoldings() []Holding {
	return lo.Filter(s.Holdings, func(h Holding, _ int) bool { return h.IsRWAToken })
}

// Find returns the holding for currency issued by issuer.
func (s *Summary) Find(currency, issuer string) (Holding, bool) {
	return lo.Find(s.Holdings, func(h Holding) bool {
		return h.Currency == currency && h.Issuer == issuer
	})
}

// Load aggregates the holdings of account over an open connection. A failed
// metadata lookup leaves that holding unclassified and is counted in
// LookupFailures; it never fails the aggregation.
func Load(ctx context.Context, conn ledger.Ledger, account string, opts Options) (*Summary, error) {
	if err := ledger.ValidateAddress(account); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	var (
		info  *ledger.AccountInfo
		lines []ledger.TrustLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = conn.AccountInfo(gctx, account)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = conn.AccountLines(gctx, account, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading holdings of %s: %w", account, err)
	}

	holdings := lo.Map(lines, func(l ledger.TrustLine, _ int) Holding {
		return Holding{
			Currency:   l.Currency,
			Issuer:     l.Account,
			AssetID:    rwa.GenerateAssetID(l.Currency, l.Account),
			Balance:    l.Balance.Abs(),
			Limit:      l.Limit,
			QualityIn:  l.QualityIn,
			QualityOut: l.QualityOut,
			Frozen:     l.Frozen(),
			IsLPToken:  ledger.IsLPTokenCurrency(l.Currency),
		}
	})

	failures, err := classify(ctx, conn, holdings, opts)
	if err != nil {
		return nil, err
	}

	summary := Summarize(account, info.Balance, holdings)
	summary.OwnerCount = info.OwnerCount
	summary.LookupFailures = failures
	return summary, nil
}

// classify recovers metadata for every non-LP holding in place and returns
// how many lookups failed.
func classify(ctx context.Context, conn ledger.Ledger, holdings []Holding, opts Options) (int, error) {
	indexes, err := newIssuerIndexes(opts.HistoryPageSize)
	if err != nil {
		return 0, err
	}

	pool := pond.NewPool(opts.Workers, pond.WithContext(ctx))
	var (
		mu       sync.Mutex
		failures int
	)
	for i := range holdings {
		if holdings[i].IsLPToken {
			continue
		}
		h := &holdings[i]
		pool.Submit(func() {
			md, err := indexes.get(h.Issuer).Lookup(ctx, conn, h.Currency)
			if err != nil {
				logger.WarnCtx(ctx, "metadata lookup failed; holding left unclassified",
					zap.String("assetId", h.AssetID),
					zap.Error(err),
				)
				mu.Lock()
				failures++
				mu.Unlock()
				return
			}
			if md != nil {
				h.Metadata = md
				h.IsRWAToken = true
				if md.Valued() {
					h.EstimatedValue = h.Balance.Mul(md.PricePerToken())
				}
			}
		})
	}
	pool.StopAndWait()

	if err := ctx.Err(); err != nil {
		return failures, err
	}
	return failures, nil
}

// issuerIndexes hands out one metadata index per issuer for the duration of
// one aggregation, so holdings sharing an issuer share its history pages.
type issuerIndexes struct {
	pageSize int
	memo     *lru.Cache[string, *metadata.Index]
}

func newIssuerIndexes(pageSize int) (*issuerIndexes, error) {
	memo, err := lru.New[string, *metadata.Index](issuerMemoSize)
	if err != nil {
		return nil, err
	}
	return &issuerIndexes{pageSize: pageSize, memo: memo}, nil
}

func (x *issuerIndexes) get(issuer string) *metadata.Index {
	idx := metadata.NewIndex(issuer, x.pageSize)
	if prev, ok, _ := x.memo.PeekOrAdd(issuer, idx); ok {
		return prev
	}
	return idx
}

// Summarize computes the totals over already classified holdings.
// Unclassified and unvalued holdings contribute zero.
func Summarize(account string, xrpBalance decimal.Decimal, holdings []Holding) *Summary {
	rwaHoldings := lo.Filter(holdings, func(h Holding, _ int) bool { return h.IsRWAToken })

	total := lo.Reduce(rwaHoldings, func(acc decimal.Decimal, h Holding, _ int) decimal.Decimal {
		return acc.Add(h.EstimatedValue)
	}, decimal.Zero)

	diversification := lo.CountValuesBy(rwaHoldings, func(h Holding) rwa.AssetType {
		return h.Metadata.AssetType
	})

	if holdings == nil {
		holdings = []Holding{}
	}
	return &Summary{
		Account:         account,
		XRPBalance:      xrpBalance,
		Holdings:        holdings,
		TotalRWAValue:   total,
		Diversification: diversification,
		ReserveHealthy:  xrpBalance.GreaterThanOrEqual(ReserveThreshold),
	}
}

// Balance returns account's spendable balance of an asset: the XRP balance,
// or the absolute trust line balance for an issued currency (zero without a
// line).
func Balance(ctx context.Context, conn ledger.Ledger, account string, asset ledger.Amount) (decimal.Decimal, error) {
	if asset.IsNative() {
		info, err := conn.AccountInfo(ctx, account)
		if err != nil {
			return decimal.Zero, err
		}
		return info.Balance, nil
	}
	lines, err := conn.AccountLines(ctx, account, asset.Issuer)
	if err != nil {
		return decimal.Zero, err
	}
	line, ok := lo.Find(lines, func(l ledger.TrustLine) bool { return l.Currency == asset.Currency })
	if !ok {
		return decimal.Zero, nil
	}
	return line.Balance.Abs(), nil
}

// RequireBalance fails with an InsufficientBalanceError unless account holds
// at least requested.Value of the asset. Issuers hold unlimited amounts of
// their own currency.
func RequireBalance(ctx context.Context, conn ledger.Ledger, account string, requested ledger.Amount) error {
	if !requested.IsNative() && requested.Issuer == account {
		return nil
	}
	available, err := Balance(ctx, conn, account, requested)
	if err != nil {
		return err
	}
	if available.LessThan(requested.Value) {
		return &errs.InsufficientBalanceError{
			Asset:     requested.Asset().String(),
			Available: available,
			Requested: requested.Value,
		}
	}
	return nil
}
