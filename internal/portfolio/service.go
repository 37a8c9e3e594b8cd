package portfolio

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

// Service answers holdings and portfolio queries, one connection per call.
type Service struct {
	dialer ledger.Dialer
	opts   Options
}

// NewService creates a portfolio Service.
func NewService(dialer ledger.Dialer, opts Options) *Service {
	return &Service{dialer: dialer, opts: opts.withDefaults()}
}

// GetHoldings returns the classified holdings of account.
func (s *Service) GetHoldings(ctx context.Context, account string) (*Summary, error) {
	if err := ledger.ValidateAddress(account); err != nil {
		return nil, err
	}
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	summary, err := Load(ctx, conn, account, s.opts)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "holdings loaded",
		zap.String("account", account),
		zap.Int("holdings", len(summary.Holdings)),
		zap.Int("lookupFailures", summary.LookupFailures),
	)
	return summary, nil
}

// TypeAllocation is the share of classified value held in one asset type.
type TypeAllocation struct {
	Type    rwa.AssetType   `json:"type"`
	Count   int             `json:"count"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// LPPosition is an LP token balance in one pool.
type LPPosition struct {
	Currency    string          `json:"currency"`
	PoolAccount string          `json:"poolAccount"`
	Balance     decimal.Decimal `json:"balance"`
}

// Snapshot is the portfolio view of one account at query time.
type Snapshot struct {
	Summary
	RWATokenCount   int              `json:"rwaTokenCount"`
	Allocation      []TypeAllocation `json:"allocation"`
	LPPositions     []LPPosition     `json:"lpPositions"`
	RequiredReserve decimal.Decimal  `json:"requiredReserve"`
	SpendableXRP    decimal.Decimal  `json:"spendableXrp"`
}

// GetPortfolio returns holdings plus allocation by type, LP positions and
// reserve usage. Nothing is cached between calls.
func (s *Service) GetPortfolio(ctx context.Context, account string) (*Snapshot, error) {
	if err := ledger.ValidateAddress(account); err != nil {
		return nil, err
	}
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	summary, err := Load(ctx, conn, account, s.opts)
	if err != nil {
		return nil, err
	}
	reserves, err := conn.ServerReserves(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading reserves: %w", err)
	}
	return BuildSnapshot(summary, reserves), nil
}

// BuildSnapshot derives the portfolio view from a summary.
func BuildSnapshot(summary *Summary, reserves *ledger.Reserves) *Snapshot {
	rwaHoldings := summary.RWAHoldings()
	byType := lo.GroupBy(rwaHoldings, func(h Holding) rwa.AssetType { return h.Metadata.AssetType })

	allocation := lo.FilterMap(rwa.AssetTypes, func(t rwa.AssetType, _ int) (TypeAllocation, bool) {
		group, ok := byType[t]
		if !ok {
			return TypeAllocation{}, false
		}
		value := lo.Reduce(group, func(acc decimal.Decimal, h Holding, _ int) decimal.Decimal {
			return acc.Add(h.EstimatedValue)
		}, decimal.Zero)
		pct := decimal.Zero
		if summary.TotalRWAValue.IsPositive() {
			pct = value.Div(summary.TotalRWAValue).Mul(decimal.NewFromInt(100)).Round(2)
		}
		return TypeAllocation{Type: t, Count: len(group), Value: value, Percent: pct}, true
	})

	lp := lo.FilterMap(summary.Holdings, func(h Holding, _ int) (LPPosition, bool) {
		return LPPosition{Currency: h.Currency, PoolAccount: h.Issuer, Balance: h.Balance}, h.IsLPToken
	})

	required := reserves.Base.Add(reserves.Increment.Mul(decimal.NewFromInt(int64(summary.OwnerCount))))
	spendable := decimal.Max(summary.XRPBalance.Sub(required), decimal.Zero)

	return &Snapshot{
		Summary:         *summary,
		RWATokenCount:   len(rwaHoldings),
		Allocation:      allocation,
		LPPositions:     lp,
		RequiredReserve: required,
		SpendableXRP:    spendable,
	}
}
