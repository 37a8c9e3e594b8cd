package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/portfolio"
)

var (
	hundred = decimal.NewFromInt(100)
	// maxSlippage bounds the tolerance a caller may ask for, in percent.
	maxSlippage = decimal.NewFromInt(50)
)

// SwapRequest trades From for To. Exactly one of Amount (spend exactly) or
// DesiredOutput (receive exactly) is set.
type SwapRequest struct {
	From          amm.Asset
	To            amm.Asset
	Amount        *decimal.Decimal
	DesiredOutput *decimal.Decimal
	// Slippage is the tolerance in percent; the service default applies
	// when nil.
	Slippage *decimal.Decimal
}

func (r SwapRequest) validate() error {
	if err := amm.ValidateAssetPair(r.From, r.To); err != nil {
		return err
	}
	if _, err := checkAsset("from", r.From); err != nil {
		return err
	}
	if _, err := checkAsset("to", r.To); err != nil {
		return err
	}
	if (r.Amount == nil) == (r.DesiredOutput == nil) {
		return errs.Invalid("amount", "give exactly one of amount or desiredOutput")
	}
	if err := positive("amount", r.Amount); err != nil {
		return err
	}
	if err := positive("desiredOutput", r.DesiredOutput); err != nil {
		return err
	}
	if r.Slippage != nil && (r.Slippage.IsNegative() || r.Slippage.GreaterThan(maxSlippage)) {
		return errs.Invalid("slippage", "must be between 0 and %s percent", maxSlippage)
	}
	return nil
}

// hop is one pool on a route, oriented from In to Out.
type hop struct {
	state   *ledger.PoolState
	in, out amm.Asset
	poolIn  decimal.Decimal
	poolOut decimal.Decimal
}

// route returns the pools a trade crosses. Issued to issued goes through XRP,
// and both pools are read concurrently.
func route(ctx context.Context, conn ledger.Ledger, from, to amm.Asset) ([]hop, error) {
	legs := [][2]amm.Asset{{from, to}}
	if !from.IsBase() && !to.IsBase() {
		legs = [][2]amm.Asset{{from, xrpAsset}, {xrpAsset, to}}
	}

	hops := make([]hop, len(legs))
	g, gctx := errgroup.WithContext(ctx)
	for i, leg := range legs {
		g.Go(func() error {
			state, err := fetchPool(gctx, conn, leg[0], leg[1])
			if err != nil {
				return err
			}
			in, _ := state.Reserve(leg[0])
			out, _ := state.Reserve(leg[1])
			if !in.IsPositive() || !out.IsPositive() {
				return &errs.InvalidPairError{Asset1: leg[0].String(), Asset2: leg[1].String(), Reason: "pool has no liquidity"}
			}
			hops[i] = hop{state: state, in: leg[0], out: leg[1], poolIn: in, poolOut: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hops, nil
}

// Quote is the priced plan for a swap.
type Quote struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Route []string `json:"route"`
	// Input is the amount spent: exact in input mode, estimated in output mode.
	Input          decimal.Decimal `json:"input"`
	ExpectedOutput decimal.Decimal `json:"expectedOutput"`
	MinimumOutput  decimal.Decimal `json:"minimumOutput"`
	MaximumInput   decimal.Decimal `json:"maximumInput"`
	Slippage       decimal.Decimal `json:"slippagePercent"`
	SpotPrice      decimal.Decimal `json:"spotPrice"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	PriceImpact    decimal.Decimal `json:"priceImpactPercent"`
	TradingFees    []uint16        `json:"tradingFees"`
	ExactOutput    bool            `json:"exactOutput"`
}

// quote prices req over hops. Outputs at or above a pool's reserve are
// rejected here so nothing unpriceable reaches the ledger.
func quote(req SwapRequest, hops []hop, slippage decimal.Decimal) (*Quote, error) {
	q := &Quote{
		From:     req.From.String(),
		To:       req.To.String(),
		Slippage: slippage,
		Route: append(
			lo.Map(hops, func(h hop, _ int) string { return h.in.String() }),
			req.To.String(),
		),
		TradingFees: lo.Map(hops, func(h hop, _ int) uint16 { return h.state.TradingFee }),
		ExactOutput: req.DesiredOutput != nil,
	}

	if req.Amount != nil {
		q.Input = *req.Amount
		q.ExpectedOutput = lo.Reduce(hops, func(amount decimal.Decimal, h hop, _ int) decimal.Decimal {
			return amm.SwapIn(amount, h.poolIn, h.poolOut, h.state.TradingFee)
		}, q.Input)
		if !q.ExpectedOutput.IsPositive() {
			return nil, errs.Invalid("amount", "too small to produce any output")
		}
	} else {
		q.ExpectedOutput = *req.DesiredOutput
		need := q.ExpectedOutput
		for i := len(hops) - 1; i >= 0; i-- {
			h := hops[i]
			in, err := amm.SwapOut(need, h.poolIn, h.poolOut, h.state.TradingFee)
			if errors.Is(err, amm.ErrInsufficientLiquidity) {
				return nil, errs.Invalid("desiredOutput", "%s %s meets or exceeds the pool reserve of %s", need, h.out, h.poolOut)
			}
			if err != nil {
				return nil, err
			}
			need = in
		}
		q.Input = need
	}

	tolerance := slippage.Div(hundred)
	q.MinimumOutput = amm.MinimumReceive(q.ExpectedOutput, tolerance)
	q.MaximumInput = q.Input
	if q.ExactOutput {
		q.MaximumInput = q.Input.Mul(decimal.NewFromInt(1).Add(tolerance))
	}
	q.SpotPrice = lo.Reduce(hops, func(price decimal.Decimal, h hop, _ int) decimal.Decimal {
		return price.Mul(amm.SpotPrice(h.poolIn, h.poolOut))
	}, decimal.NewFromInt(1))
	q.EffectivePrice = q.ExpectedOutput.DivRound(q.Input, 18)
	q.PriceImpact = amm.PriceImpact(q.Input, hops[0].poolIn).Round(6)
	return q, nil
}

// transaction builds the self-addressed partial payment that executes q.
func (q *Quote) transaction(account string, req SwapRequest) ledger.Transaction {
	var paths [][]map[string]any
	if !req.From.IsBase() && !req.To.IsBase() {
		paths = [][]map[string]any{{{"currency": amm.BaseCurrency}}}
	}
	return ledger.CrossCurrencyPayment(account, account,
		amountOf(req.To, q.ExpectedOutput),
		amountOf(req.From, q.MaximumInput),
		amountOf(req.To, q.MinimumOutput),
		paths,
	)
}

// EstimateSwap prices a swap against live reserves without submitting.
func (s *Service) EstimateSwap(ctx context.Context, req SwapRequest) (*Quote, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	hops, err := route(ctx, conn, req.From, req.To)
	if err != nil {
		return nil, err
	}
	return quote(req, hops, s.slippage(req))
}

func (s *Service) slippage(req SwapRequest) decimal.Decimal {
	if req.Slippage != nil {
		return *req.Slippage
	}
	return s.opts.DefaultSlippage
}

// SwapResult reports a settled swap against its quote.
type SwapResult struct {
	Hash        string          `json:"hash"`
	Code        string          `json:"code"`
	LedgerIndex uint32          `json:"ledgerIndex"`
	Quote       *Quote          `json:"quote"`
	Delivered   decimal.Decimal `json:"delivered"`
	// RealizedSlippage is the percent shortfall of Delivered against the
	// quote's expected output. Negative means the trade did better.
	RealizedSlippage decimal.Decimal `json:"realizedSlippagePercent"`
	Warnings         []string        `json:"warnings,omitempty"`
}

// Swap executes a swap as a partial payment to self. The quote's minimum
// output travels with the transaction as DeliverMin; slippage beyond the
// tolerance is only detectable after settlement and is reported as a warning.
func (s *Service) Swap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	account := s.signer.Address()
	ctx = logger.WithFields(ctx,
		zap.String("operation", "amm_swap"),
		zap.String("from", req.From.String()),
		zap.String("to", req.To.String()),
	)

	hops, err := route(ctx, conn, req.From, req.To)
	if err != nil {
		return nil, err
	}
	q, err := quote(req, hops, s.slippage(req))
	if err != nil {
		return nil, err
	}
	if err := portfolio.RequireBalance(ctx, conn, account, amountOf(req.From, q.MaximumInput)); err != nil {
		return nil, err
	}

	res, err := ledger.Submit(ctx, conn, q.transaction(account, req), s.signer)
	if err != nil {
		return nil, err
	}

	result := &SwapResult{Hash: res.Hash, Code: res.Code, LedgerIndex: res.LedgerIndex, Quote: q}
	if res.DeliveredAmount == nil {
		result.Warnings = append(result.Warnings, "delivered amount missing from settlement metadata; realized slippage unknown")
	} else {
		result.Delivered = res.DeliveredAmount.Value
		result.RealizedSlippage = amm.RealizedSlippage(q.ExpectedOutput, result.Delivered).Mul(hundred).Round(6)
		if result.RealizedSlippage.GreaterThan(q.Slippage) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"realized slippage %s%% exceeded the %s%% tolerance", result.RealizedSlippage, q.Slippage))
		}
	}

	logger.InfoCtx(ctx, "swap settled",
		zap.String("hash", res.Hash),
		zap.String("expected", q.ExpectedOutput.String()),
		zap.String("delivered", result.Delivered.String()),
	)
	return result, nil
}
