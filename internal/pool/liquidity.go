package pool

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/portfolio"
)

// DepositMode selects which assets a deposit supplies.
type DepositMode string

const (
	DepositBalanced    DepositMode = "balanced"
	DepositSingleToken DepositMode = "single_asset_token"
	DepositSingleXRP   DepositMode = "single_asset_xrp"
)

// DepositRequest adds liquidity to a token/XRP pool.
type DepositRequest struct {
	Token       amm.Asset
	Mode        DepositMode
	TokenAmount *decimal.Decimal
	XRPAmount   *decimal.Decimal
}

func (r DepositRequest) validate() error {
	if err := checkToken("token", r.Token); err != nil {
		return err
	}
	if err := positive("tokenAmount", r.TokenAmount); err != nil {
		return err
	}
	if err := positive("xrpAmount", r.XRPAmount); err != nil {
		return err
	}
	switch r.Mode {
	case DepositBalanced:
		if r.TokenAmount == nil || r.XRPAmount == nil {
			return errs.Invalid("mode", "balanced deposits need both tokenAmount and xrpAmount")
		}
	case DepositSingleToken:
		if r.TokenAmount == nil {
			return errs.Invalid("tokenAmount", "required for single_asset_token deposits")
		}
	case DepositSingleXRP:
		if r.XRPAmount == nil {
			return errs.Invalid("xrpAmount", "required for single_asset_xrp deposits")
		}
	default:
		return errs.Invalid("mode", "%q is not one of balanced, single_asset_token, single_asset_xrp", r.Mode)
	}
	return nil
}

// DepositResult reports a settled deposit.
type DepositResult struct {
	Hash             string          `json:"hash"`
	Code             string          `json:"code"`
	LedgerIndex      uint32          `json:"ledgerIndex"`
	Mode             DepositMode     `json:"mode"`
	ExpectedLPTokens decimal.Decimal `json:"expectedLpTokens"`
	PoolBefore       *Info           `json:"poolBefore"`
	PoolAfter        *Info           `json:"poolAfter,omitempty"`
}

// Deposit adds liquidity. Balanced deposits are priced by the smaller of the
// two shares; single-asset deposits pay the trading fee.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error) {
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
		zap.String("operation", "amm_deposit"),
		zap.String("token", req.Token.String()),
		zap.String("mode", string(req.Mode)),
	)

	state, err := fetchPool(ctx, conn, req.Token, xrpAsset)
	if err != nil {
		return nil, err
	}
	tokenPool, _ := state.Reserve(req.Token)
	xrpPool, _ := state.Reserve(xrpAsset)
	total := state.LPToken.Value

	var (
		tokenAmt, xrpAmt *ledger.Amount
		expected         decimal.Decimal
		flags            uint32
	)
	if req.TokenAmount != nil && req.Mode != DepositSingleXRP {
		a := amountOf(req.Token, *req.TokenAmount)
		tokenAmt = &a
	}
	if req.XRPAmount != nil && req.Mode != DepositSingleToken {
		a := ledger.XRP(*req.XRPAmount)
		xrpAmt = &a
	}
	switch req.Mode {
	case DepositBalanced:
		expected = amm.BalancedDepositLPTokens(tokenAmt.Value, xrpAmt.Value, tokenPool, xrpPool, total)
		flags = amm.TfTwoAsset
	case DepositSingleToken:
		expected = amm.LPTokensFromDeposit(tokenAmt.Value, tokenPool, total, false, state.TradingFee)
		flags = amm.TfSingleAsset
	case DepositSingleXRP:
		expected = amm.LPTokensFromDeposit(xrpAmt.Value, xrpPool, total, false, state.TradingFee)
		flags = amm.TfSingleAsset
	}

	for _, a := range []*ledger.Amount{tokenAmt, xrpAmt} {
		if a == nil {
			continue
		}
		if err := portfolio.RequireBalance(ctx, conn, account, *a); err != nil {
			return nil, err
		}
	}

	var tx ledger.Transaction
	if req.Mode == DepositSingleXRP {
		tx = ledger.AMMDeposit(account, req.Token, xrpAsset, xrpAmt, nil, flags)
	} else {
		tx = ledger.AMMDeposit(account, req.Token, xrpAsset, tokenAmt, xrpAmt, flags)
	}
	res, err := ledger.Submit(ctx, conn, tx, s.signer)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "liquidity deposited",
		zap.String("hash", res.Hash),
		zap.String("expectedLpTokens", expected.String()),
	)
	return &DepositResult{
		Hash:             res.Hash,
		Code:             res.Code,
		LedgerIndex:      res.LedgerIndex,
		Mode:             req.Mode,
		ExpectedLPTokens: expected,
		PoolBefore:       newInfo(state),
		PoolAfter:        snapshot(ctx, conn, account, req.Token, xrpAsset),
	}, nil
}

// WithdrawMode selects how LP tokens are redeemed.
type WithdrawMode string

const (
	WithdrawBoth        WithdrawMode = "both_assets"
	WithdrawSingleToken WithdrawMode = "single_asset_token"
	WithdrawSingleXRP   WithdrawMode = "single_asset_xrp"
	WithdrawLPTokens    WithdrawMode = "lp_tokens_amount"
)

// singleAssetSlack is how far a requested single-asset output may exceed
// the proportional share of the account's LP balance.
var singleAssetSlack = decimal.RequireFromString("1.1")

// WithdrawRequest removes liquidity from a token/XRP pool.
type WithdrawRequest struct {
	Token amm.Asset
	Mode  WithdrawMode
	// Percentage of the LP balance to redeem in both_assets mode.
	Percentage    *decimal.Decimal
	LPTokenAmount *decimal.Decimal
	// TokenAmount or XRPAmount is the exact output of a single-asset
	// withdrawal. When omitted the whole LP balance is redeemed into it.
	TokenAmount *decimal.Decimal
	XRPAmount   *decimal.Decimal
}

func (r WithdrawRequest) validate() error {
	if err := checkToken("token", r.Token); err != nil {
		return err
	}
	for field, v := range map[string]*decimal.Decimal{
		"percentage":    r.Percentage,
		"lpTokenAmount": r.LPTokenAmount,
		"tokenAmount":   r.TokenAmount,
		"xrpAmount":     r.XRPAmount,
	} {
		if err := positive(field, v); err != nil {
			return err
		}
	}
	if r.Percentage != nil && r.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return errs.Invalid("percentage", "must be at most 100")
	}
	switch r.Mode {
	case WithdrawBoth:
	case WithdrawSingleToken, WithdrawSingleXRP:
		if r.Percentage != nil {
			return errs.Invalid("percentage", "only applies to both_assets withdrawals")
		}
	case WithdrawLPTokens:
		if r.LPTokenAmount == nil {
			return errs.Invalid("lpTokenAmount", "required for lp_tokens_amount withdrawals")
		}
	default:
		return errs.Invalid("mode", "%q is not one of both_assets, single_asset_token, single_asset_xrp, lp_tokens_amount", r.Mode)
	}
	if r.Percentage != nil && r.LPTokenAmount != nil {
		return errs.Invalid("percentage", "give either percentage or lpTokenAmount, not both")
	}
	return nil
}

// WithdrawResult reports a settled withdrawal with its expected outputs.
type WithdrawResult struct {
	Hash          string          `json:"hash"`
	Code          string          `json:"code"`
	LedgerIndex   uint32          `json:"ledgerIndex"`
	Mode          WithdrawMode    `json:"mode"`
	LPTokensIn    decimal.Decimal `json:"lpTokensIn"`
	ExpectedToken decimal.Decimal `json:"expectedToken"`
	ExpectedXRP   decimal.Decimal `json:"expectedXrp"`
	PoolBefore    *Info           `json:"poolBefore"`
	PoolAfter     *Info           `json:"poolAfter,omitempty"`
}

// Withdraw redeems LP tokens. A requested single-asset output more than 10%
// above the proportional share of the account's whole LP balance is
// rejected before submission; the ledger still enforces its own limits.
func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (*WithdrawResult, error) {
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
		zap.String("operation", "amm_withdraw"),
		zap.String("token", req.Token.String()),
		zap.String("mode", string(req.Mode)),
	)

	state, err := fetchPool(ctx, conn, req.Token, xrpAsset)
	if err != nil {
		return nil, err
	}
	lpBalance, err := portfolio.Balance(ctx, conn, account, state.LPToken)
	if err != nil {
		return nil, err
	}
	lpAsset := state.LPToken.Asset().String()
	if !lpBalance.IsPositive() {
		return nil, &errs.InsufficientBalanceError{Asset: lpAsset, Available: lpBalance, Requested: decimal.NewFromInt(1)}
	}

	tokenPool, _ := state.Reserve(req.Token)
	xrpPool, _ := state.Reserve(xrpAsset)
	total := state.LPToken.Value
	result := &WithdrawResult{Mode: req.Mode, PoolBefore: newInfo(state)}

	var tx ledger.Transaction
	switch req.Mode {
	case WithdrawBoth, WithdrawLPTokens:
		lpIn := lpBalance
		switch {
		case req.LPTokenAmount != nil:
			lpIn = *req.LPTokenAmount
		case req.Percentage != nil:
			lpIn = lpBalance.Mul(*req.Percentage).Div(decimal.NewFromInt(100))
		}
		if lpIn.GreaterThan(lpBalance) {
			return nil, &errs.InsufficientBalanceError{Asset: lpAsset, Available: lpBalance, Requested: lpIn}
		}
		result.LPTokensIn = lpIn
		result.ExpectedToken, result.ExpectedXRP = amm.AssetsFromLPTokens(lpIn, total, tokenPool, xrpPool)
		if lpIn.Equal(lpBalance) {
			tx = ledger.AMMWithdraw(account, req.Token, xrpAsset, nil, nil, nil, amm.TfWithdrawAll)
		} else {
			lp := ledger.Issued(state.LPToken.Currency, state.LPToken.Issuer, lpIn)
			tx = ledger.AMMWithdraw(account, req.Token, xrpAsset, nil, nil, &lp, amm.TfLPToken)
		}

	case WithdrawSingleToken, WithdrawSingleXRP:
		side, reserve, requested, field := req.Token, tokenPool, req.TokenAmount, "tokenAmount"
		if req.Mode == WithdrawSingleXRP {
			side, reserve, requested, field = xrpAsset, xrpPool, req.XRPAmount, "xrpAmount"
		}
		if requested == nil {
			out := amm.SingleAssetOut(reserve, total, lpBalance, state.TradingFee)
			result.LPTokensIn = lpBalance
			s.setExpected(result, side, out)
			marker := amountOf(side, decimal.Zero)
			tx = ledger.AMMWithdraw(account, req.Token, xrpAsset, &marker, nil, nil, amm.TfOneAssetWithdrawAll)
			break
		}
		proportional := reserve.Mul(lpBalance).DivRound(total, 18)
		if limit := proportional.Mul(singleAssetSlack); requested.GreaterThan(limit) {
			return nil, errs.Invalid(field, "requested %s exceeds %s, the proportional share of your LP balance plus 10%%", requested, limit.Round(6))
		}
		s.setExpected(result, side, *requested)
		out := amountOf(side, *requested)
		tx = ledger.AMMWithdraw(account, req.Token, xrpAsset, &out, nil, nil, amm.TfSingleAsset)
	}

	res, err := ledger.Submit(ctx, conn, tx, s.signer)
	if err != nil {
		return nil, err
	}
	result.Hash, result.Code, result.LedgerIndex = res.Hash, res.Code, res.LedgerIndex
	result.PoolAfter = snapshot(ctx, conn, account, req.Token, xrpAsset)

	logger.InfoCtx(ctx, "liquidity withdrawn",
		zap.String("hash", res.Hash),
		zap.String("lpTokensIn", result.LPTokensIn.String()),
	)
	return result, nil
}

func (s *Service) setExpected(r *WithdrawResult, side amm.Asset, v decimal.Decimal) {
	if side.IsBase() {
		r.ExpectedXRP = v
		return
	}
	r.ExpectedToken = v
}
