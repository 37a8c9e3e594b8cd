// Package pool sequences the AMM lifecycle for token/XRP pools: creation,
// deposits, withdrawals, swaps and auction slot bids. Expected amounts and
// slippage bounds come from package amm; the ledger settles.
package pool

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/portfolio"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

var xrpAsset = amm.Asset{Currency: amm.BaseCurrency}

// Options tunes a Service.
type Options struct {
	// SafetyBuffer is XRP kept spare on top of pool creation costs.
	SafetyBuffer decimal.Decimal
	// DefaultSlippage is the swap tolerance in percent when none is given.
	DefaultSlippage decimal.Decimal
}

// Service runs AMM operations signed by one account.
type Service struct {
	dialer ledger.Dialer
	signer ledger.Signer
	opts   Options
}

// NewService creates a pool Service.
func NewService(dialer ledger.Dialer, signer ledger.Signer, opts Options) *Service {
	if opts.DefaultSlippage.IsZero() {
		opts.DefaultSlippage = decimal.NewFromInt(1)
	}
	return &Service{dialer: dialer, signer: signer, opts: opts}
}

// ParseAsset accepts "XRP" or an asset id CURRENCY.issuer.
func ParseAsset(field, s string) (amm.Asset, error) {
	if s == amm.BaseCurrency {
		return xrpAsset, nil
	}
	id, ok := rwa.ParseAssetID(s)
	if !ok {
		return amm.Asset{}, errs.Invalid(field, "%q must be XRP or CURRENCY.issuer", s)
	}
	return checkAsset(field, amm.Asset{Currency: id.Currency, Issuer: id.Issuer})
}

func checkAsset(field string, a amm.Asset) (amm.Asset, error) {
	if a.IsBase() {
		return a, nil
	}
	if a.Issuer == "" {
		return amm.Asset{}, errs.Invalid(field, "issued currency %s needs an issuer", a.Currency)
	}
	if err := ledger.ValidateCurrency(field, a.Currency); err != nil {
		return amm.Asset{}, err
	}
	if err := ledger.ValidateAddress(a.Issuer); err != nil {
		return amm.Asset{}, err
	}
	return a, nil
}

func checkPair(a, b amm.Asset) error {
	if _, err := checkAsset("asset1", a); err != nil {
		return err
	}
	_, err := checkAsset("asset2", b)
	return err
}

func checkToken(field string, a amm.Asset) error {
	if a.IsBase() {
		return errs.Invalid(field, "must be an issued currency; the pool's other side is XRP")
	}
	_, err := checkAsset(field, a)
	return err
}

func amountOf(a amm.Asset, v decimal.Decimal) ledger.Amount {
	if a.IsBase() {
		return ledger.XRP(v)
	}
	return ledger.Issued(a.Currency, a.Issuer, v)
}

func positive(field string, v *decimal.Decimal) error {
	if v != nil && !v.IsPositive() {
		return errs.Invalid(field, "must be positive")
	}
	return nil
}

// fetchPool returns the live pool or an InvalidPairError when none exists.
func fetchPool(ctx context.Context, conn ledger.Ledger, a, b amm.Asset) (*ledger.PoolState, error) {
	state, err := conn.AMMInfo(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, &errs.InvalidPairError{Asset1: a.String(), Asset2: b.String(), Reason: "no AMM pool exists for this pair"}
	}
	return state, nil
}

// Position is an account's share of a pool.
type Position struct {
	Account     string          `json:"account"`
	LPBalance   decimal.Decimal `json:"lpBalance"`
	SharePct    decimal.Decimal `json:"sharePercent"`
	Redeemable1 decimal.Decimal `json:"redeemable1"`
	Redeemable2 decimal.Decimal `json:"redeemable2"`
}

// Info is the reported state of a pool.
type Info struct {
	Account           string          `json:"account"`
	Asset1            ledger.Amount   `json:"asset1"`
	Asset2            ledger.Amount   `json:"asset2"`
	LPToken           ledger.Amount   `json:"lpToken"`
	TradingFee        uint16          `json:"tradingFee"`
	TradingFeePercent decimal.Decimal `json:"tradingFeePercent"`
	// SpotPrice is the price of one unit of Asset1 in Asset2.
	SpotPrice    decimal.Decimal `json:"spotPrice"`
	AuctionPrice decimal.Decimal `json:"auctionPrice"`
	AuctionOwner string          `json:"auctionOwner,omitempty"`
	Position     *Position       `json:"position,omitempty"`
}

func newInfo(state *ledger.PoolState) *Info {
	return &Info{
		Account:           state.Account,
		Asset1:            state.Amount1,
		Asset2:            state.Amount2,
		LPToken:           state.LPToken,
		TradingFee:        state.TradingFee,
		TradingFeePercent: amm.FeeFraction(state.TradingFee).Mul(decimal.NewFromInt(100)),
		SpotPrice:         amm.SpotPrice(state.Amount1.Value, state.Amount2.Value),
		AuctionPrice:      state.AuctionPrice,
		AuctionOwner:      state.AuctionOwner,
	}
}

func newPosition(account string, state *ledger.PoolState, lpBalance decimal.Decimal) *Position {
	total := state.LPToken.Value
	r1, r2 := amm.AssetsFromLPTokens(lpBalance, total, state.Amount1.Value, state.Amount2.Value)
	share := decimal.Zero
	if total.IsPositive() {
		share = lpBalance.Mul(decimal.NewFromInt(100)).DivRound(total, 6)
	}
	return &Position{Account: account, LPBalance: lpBalance, SharePct: share, Redeemable1: r1, Redeemable2: r2}
}

// snapshot re-reads the pool and account's LP balance after a submission.
// Failures are logged and yield nil; the transaction has already settled.
func snapshot(ctx context.Context, conn ledger.Ledger, account string, a, b amm.Asset) *Info {
	state, err := conn.AMMInfo(ctx, a, b)
	if err != nil || state == nil {
		logger.WarnCtx(ctx, "pool state unavailable after submission", zap.Error(err))
		return nil
	}
	info := newInfo(state)
	lp, err := portfolio.Balance(ctx, conn, account, state.LPToken)
	if err != nil {
		logger.WarnCtx(ctx, "LP balance unavailable after submission", zap.Error(err))
		return info
	}
	info.Position = newPosition(account, state, lp)
	return info
}

// InfoRequest selects a pool and optionally an account to report on.
type InfoRequest struct {
	Asset1  amm.Asset
	Asset2  amm.Asset
	Account string
}

// GetAMMInfo returns the pool for a pair, with the account's position when
// one is named.
func (s *Service) GetAMMInfo(ctx context.Context, req InfoRequest) (*Info, error) {
	if err := amm.ValidateAssetPair(req.Asset1, req.Asset2); err != nil {
		return nil, err
	}
	if err := checkPair(req.Asset1, req.Asset2); err != nil {
		return nil, err
	}
	if req.Account != "" {
		if err := ledger.ValidateAddress(req.Account); err != nil {
			return nil, err
		}
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	state, err := fetchPool(ctx, conn, req.Asset1, req.Asset2)
	if err != nil {
		return nil, err
	}
	info := newInfo(state)
	if req.Account != "" {
		lp, err := portfolio.Balance(ctx, conn, req.Account, state.LPToken)
		if err != nil {
			return nil, err
		}
		info.Position = newPosition(req.Account, state, lp)
	}
	return info, nil
}

// CreateRequest seeds a token/XRP pool.
type CreateRequest struct {
	Token       amm.Asset
	TokenAmount decimal.Decimal
	XRPAmount   decimal.Decimal
	TradingFee  uint16
}

// CreateResult reports a created pool.
type CreateResult struct {
	Hash            string          `json:"hash"`
	Code            string          `json:"code"`
	LedgerIndex     uint32          `json:"ledgerIndex"`
	CreationFee     decimal.Decimal `json:"creationFee"`
	InitialLPTokens decimal.Decimal `json:"initialLpTokens"`
	Pool            *Info           `json:"pool,omitempty"`
}

// CreatePool creates the pool for Token against XRP. The signer must hold
// the token amount and XRP for the deposit, the live owner reserve burned as
// the creation fee and the configured safety buffer.
func (s *Service) CreatePool(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := checkToken("token", req.Token); err != nil {
		return nil, err
	}
	if err := amm.ValidateAssetPair(req.Token, xrpAsset); err != nil {
		return nil, err
	}
	if !req.TokenAmount.IsPositive() {
		return nil, errs.Invalid("tokenAmount", "must be positive")
	}
	if !req.XRPAmount.IsPositive() {
		return nil, errs.Invalid("xrpAmount", "must be positive")
	}
	if err := amm.ValidateFee(req.TradingFee); err != nil {
		return nil, err
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	account := s.signer.Address()
	ctx = logger.WithFields(ctx,
		zap.String("operation", "create_amm_pool"),
		zap.String("token", req.Token.String()),
	)

	var (
		existing *ledger.PoolState
		reserves *ledger.Reserves
		info     *ledger.AccountInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		existing, err = conn.AMMInfo(gctx, req.Token, xrpAsset)
		return err
	})
	g.Go(func() error {
		var err error
		reserves, err = conn.ServerReserves(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		info, err = conn.AccountInfo(gctx, account)
		return err
	})
	g.Go(func() error {
		return portfolio.RequireBalance(gctx, conn, account, amountOf(req.Token, req.TokenAmount))
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &errs.InvalidPairError{
			Asset1: req.Token.String(),
			Asset2: xrpAsset.String(),
			Reason: fmt.Sprintf("a pool already exists at %s", existing.Account),
		}
	}

	required := req.XRPAmount.Add(reserves.Increment).Add(s.opts.SafetyBuffer)
	if info.Balance.LessThan(required) {
		return nil, &errs.InsufficientBalanceError{
			Asset:     amm.BaseCurrency,
			Available: info.Balance,
			Requested: required,
		}
	}

	tx := ledger.AMMCreate(account, amountOf(req.Token, req.TokenAmount), ledger.XRP(req.XRPAmount), req.TradingFee)
	res, err := ledger.Submit(ctx, conn, tx, s.signer)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "pool created", zap.String("hash", res.Hash))
	return &CreateResult{
		Hash:            res.Hash,
		Code:            res.Code,
		LedgerIndex:     res.LedgerIndex,
		CreationFee:     reserves.Increment,
		InitialLPTokens: amm.InitialLPTokens(req.TokenAmount, req.XRPAmount),
		Pool:            snapshot(ctx, conn, account, req.Token, xrpAsset),
	}, nil
}

// BidRequest bids LP tokens for a pool's auction slot.
type BidRequest struct {
	Asset1 amm.Asset
	Asset2 amm.Asset
	// Bid defaults to the minimum outbid price.
	Bid *decimal.Decimal
}

// BidResult reports a settled auction bid.
type BidResult struct {
	Hash          string          `json:"hash"`
	Code          string          `json:"code"`
	LedgerIndex   uint32          `json:"ledgerIndex"`
	PreviousPrice decimal.Decimal `json:"previousPrice"`
	MinimumBid    decimal.Decimal `json:"minimumBid"`
	Bid           decimal.Decimal `json:"bid"`
	Pool          *Info           `json:"pool,omitempty"`
}

// Bid buys the pool's auction slot with LP tokens. A bid below the minimum
// outbid price is rejected before submission.
func (s *Service) Bid(ctx context.Context, req BidRequest) (*BidResult, error) {
	if err := amm.ValidateAssetPair(req.Asset1, req.Asset2); err != nil {
		return nil, err
	}
	if err := checkPair(req.Asset1, req.Asset2); err != nil {
		return nil, err
	}
	if err := positive("bid", req.Bid); err != nil {
		return nil, err
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	account := s.signer.Address()
	state, err := fetchPool(ctx, conn, req.Asset1, req.Asset2)
	if err != nil {
		return nil, err
	}

	minimum := amm.MinimumAuctionBid(state.AuctionPrice, amm.DefaultBidIncrement)
	bid := minimum
	if req.Bid != nil {
		if req.Bid.LessThan(minimum) {
			return nil, errs.Invalid("bid", "%s is below the minimum outbid price %s", req.Bid, minimum)
		}
		bid = *req.Bid
	}
	if err := portfolio.RequireBalance(ctx, conn, account, ledger.Issued(state.LPToken.Currency, state.LPToken.Issuer, bid)); err != nil {
		return nil, err
	}

	var bidMin *ledger.Amount
	if bid.IsPositive() {
		a := ledger.Issued(state.LPToken.Currency, state.LPToken.Issuer, bid)
		bidMin = &a
	}
	res, err := ledger.Submit(ctx, conn, ledger.AMMBid(account, req.Asset1, req.Asset2, bidMin, nil), s.signer)
	if err != nil {
		return nil, err
	}
	return &BidResult{
		Hash:          res.Hash,
		Code:          res.Code,
		LedgerIndex:   res.LedgerIndex,
		PreviousPrice: state.AuctionPrice,
		MinimumBid:    minimum,
		Bid:           bid,
		Pool:          snapshot(ctx, conn, account, req.Asset1, req.Asset2),
	}, nil
}
