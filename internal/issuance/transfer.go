package issuance

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/portfolio"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

// SendRequest moves tokens from the distribution account.
type SendRequest struct {
	AssetID     string          `json:"assetId"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}

// SendResult reports a settled transfer with the sender's balance on both
// sides of it.
type SendResult struct {
	Hash          string          `json:"hash"`
	Code          string          `json:"code"`
	LedgerIndex   uint32          `json:"ledgerIndex"`
	AssetID       string          `json:"assetId"`
	Destination   string          `json:"destination"`
	Amount        decimal.Decimal `json:"amount"`
	Value         decimal.Decimal `json:"value"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// SendToken transfers amount of an asset to destination. The asset must
// resolve, the sender must hold the amount and the destination must exist;
// each is checked before anything is submitted. A missing destination trust
// line is only a warning since the ledger decides at settlement.
func (s *Service) SendToken(ctx context.Context, req SendRequest) (*SendResult, error) {
	id, err := parseAssetID(req.AssetID)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateAddress(req.Destination); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, errs.Invalid("amount", "must be positive")
	}
	sender := s.distributor.Address()
	if req.Destination == sender {
		return nil, errs.Invalid("destination", "must differ from the sending account")
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx = logger.WithFields(ctx,
		zap.String("operation", "send_token"),
		zap.String("assetId", id.String()),
	)

	info, err := s.resolve(ctx, conn, id)
	if err != nil {
		return nil, err
	}

	amount := ledger.Issued(id.Currency, id.Issuer, req.Amount)
	before, err := portfolio.Balance(ctx, conn, sender, amount)
	if err != nil {
		return nil, err
	}
	// issuers hold unlimited amounts of their own currency
	if sender != id.Issuer && before.LessThan(req.Amount) {
		return nil, &errs.InsufficientBalanceError{
			Asset:     amount.Asset().String(),
			Available: before,
			Requested: req.Amount,
		}
	}

	if _, err := conn.AccountInfo(ctx, req.Destination); err != nil {
		var notFound *errs.AccountNotFoundError
		if errors.As(err, &notFound) {
			return nil, &errs.DestinationNotFoundError{Account: req.Destination}
		}
		return nil, err
	}

	result := &SendResult{
		AssetID:       id.String(),
		Destination:   req.Destination,
		Amount:        req.Amount,
		Value:         req.Amount.Mul(info.PricePerToken),
		BalanceBefore: before,
	}
	if warning := s.checkTrustLine(ctx, conn, req.Destination, id); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	res, err := ledger.Submit(ctx, conn, ledger.Payment(sender, req.Destination, amount), s.distributor)
	if err != nil {
		return nil, err
	}
	result.Hash, result.Code, result.LedgerIndex = res.Hash, res.Code, res.LedgerIndex

	after, err := portfolio.Balance(ctx, conn, sender, amount)
	if err != nil {
		logger.WarnCtx(ctx, "post-transfer balance unavailable", zap.Error(err))
		after = before.Sub(req.Amount)
	}
	result.BalanceAfter = after

	logger.InfoCtx(ctx, "token sent",
		zap.String("destination", req.Destination),
		zap.String("amount", req.Amount.String()),
		zap.String("hash", res.Hash),
	)
	return result, nil
}

// checkTrustLine returns a warning when destination cannot receive id.
func (s *Service) checkTrustLine(ctx context.Context, conn ledger.Ledger, destination string, id rwa.AssetID) string {
	lines, err := conn.AccountLines(ctx, destination, id.Issuer)
	if err != nil {
		logger.WarnCtx(ctx, "destination trust line check failed", zap.Error(err))
		return fmt.Sprintf("could not verify a %s trust line on %s: %v", id.Currency, destination, err)
	}
	if lo.ContainsBy(lines, func(l ledger.TrustLine) bool { return l.Currency == id.Currency }) {
		return ""
	}
	logger.WarnCtx(ctx, "destination has no trust line", zap.String("destination", destination))
	return fmt.Sprintf("%s has no trust line for %s; the ledger will reject the payment unless one is created first", destination, id)
}

// DistributeRequest pays one period of yield to holders of an asset.
type DistributeRequest struct {
	AssetID string `json:"assetId"`
	// PayoutAsset is "XRP" or the id of an issued currency.
	PayoutAsset string `json:"payoutAsset"`
	// TotalAmount is split pro rata. When nil it is derived from the yield
	// schedule of the held value, in payout units.
	TotalAmount *decimal.Decimal `json:"totalAmount,omitempty"`
	// AnnualRate overrides the rate recorded in the asset metadata.
	AnnualRate *decimal.Decimal `json:"annualRate,omitempty"`
	Frequency  rwa.Frequency    `json:"frequency,omitempty"`
	// Exclude lists accounts that receive nothing. The distribution account
	// is always excluded.
	Exclude []string `json:"exclude,omitempty"`
	// DryRun computes the payouts without submitting them.
	DryRun bool `json:"dryRun,omitempty"`
}

// Payout is one recipient's share.
type Payout struct {
	Account string          `json:"account"`
	Holding decimal.Decimal `json:"holding"`
	Share   decimal.Decimal `json:"share"`
	Amount  decimal.Decimal `json:"amount"`
	Hash    string          `json:"hash,omitempty"`
	Code    string          `json:"code,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// DistributionResult reports every payout attempt.
type DistributionResult struct {
	AssetID     string             `json:"assetId"`
	PayoutAsset string             `json:"payoutAsset"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Schedule    *rwa.YieldSchedule `json:"schedule,omitempty"`
	Distributed decimal.Decimal    `json:"distributed"`
	Payouts     []Payout           `json:"payouts"`
	Succeeded   int                `json:"succeeded"`
	Failed      int                `json:"failed"`
	DryRun      bool               `json:"dryRun"`
}

// DistributeYield pays holders of an asset pro rata from the issuer.
// Payments are sequential because they share one signing account. A failed
// payment is recorded on its Payout and the batch continues.
func (s *Service) DistributeYield(ctx context.Context, req DistributeRequest) (*DistributionResult, error) {
	id, err := parseAssetID(req.AssetID)
	if err != nil {
		return nil, err
	}
	payoutAsset, err := parsePayoutAsset(req.PayoutAsset)
	if err != nil {
		return nil, err
	}
	if req.TotalAmount != nil && !req.TotalAmount.IsPositive() {
		return nil, errs.Invalid("totalAmount", "must be positive")
	}
	if req.TotalAmount == nil && req.Frequency.PeriodsPerYear() == 0 {
		return nil, errs.Invalid("frequency", "required when totalAmount is omitted")
	}
	for _, a := range req.Exclude {
		if err := ledger.ValidateAddress(a); err != nil {
			return nil, err
		}
	}
	if s.issuer == nil {
		return nil, errs.Invalid("issuer", "no issuing credential configured")
	}
	payer := s.issuer.Address()

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx = logger.WithFields(ctx,
		zap.String("operation", "distribute_yield"),
		zap.String("assetId", id.String()),
	)

	info, err := s.resolve(ctx, conn, id)
	if err != nil {
		return nil, err
	}

	lines, err := conn.AccountLines(ctx, id.Issuer, "")
	if err != nil {
		return nil, err
	}
	excluded := lo.SliceToMap(req.Exclude, func(a string) (string, struct{}) {
		return a, struct{}{}
	})
	excluded[s.distributor.Address()] = struct{}{}
	excluded[payer] = struct{}{}
	holders := lo.FilterMap(lines, func(l ledger.TrustLine, _ int) (Payout, bool) {
		_, skip := excluded[l.Account]
		held := l.Balance.Neg()
		return Payout{Account: l.Account, Holding: held}, l.Currency == id.Currency && !skip && held.IsPositive()
	})
	if len(holders) == 0 {
		return nil, errs.Invalid("assetId", "%s has no eligible holders", id)
	}
	held := lo.Reduce(holders, func(acc decimal.Decimal, p Payout, _ int) decimal.Decimal {
		return acc.Add(p.Holding)
	}, decimal.Zero)

	result := &DistributionResult{
		AssetID:     id.String(),
		PayoutAsset: req.PayoutAsset,
		DryRun:      req.DryRun,
	}
	if req.TotalAmount != nil {
		result.TotalAmount = *req.TotalAmount
	} else {
		rate := req.AnnualRate
		if rate == nil {
			rate = info.Metadata.YieldRate
		}
		if rate == nil {
			return nil, errs.Invalid("annualRate", "%s records no yield rate; pass annualRate or totalAmount", id)
		}
		schedule, err := rwa.CalculateYieldDistribution(held.Mul(info.PricePerToken), *rate, req.Frequency)
		if err != nil {
			return nil, err
		}
		result.Schedule = schedule
		result.TotalAmount = schedule.AmountPerPeriod
	}

	payouts := Allocate(holders, held, result.TotalAmount, payoutAsset.IsNative())
	if !req.DryRun {
		if err := portfolio.RequireBalance(ctx, conn, payer, ledger.Amount{
			Currency: payoutAsset.Currency, Issuer: payoutAsset.Issuer, Value: result.TotalAmount,
		}); err != nil {
			return nil, err
		}
	}

	for i := range payouts {
		p := &payouts[i]
		if !p.Amount.IsPositive() {
			continue
		}
		result.Distributed = result.Distributed.Add(p.Amount)
		if req.DryRun {
			continue
		}
		amount := ledger.Amount{Currency: payoutAsset.Currency, Issuer: payoutAsset.Issuer, Value: p.Amount}
		res, err := ledger.Submit(ctx, conn, ledger.Payment(payer, p.Account, amount), s.issuer)
		if res != nil {
			p.Hash, p.Code = res.Hash, res.Code
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			p.Error = err.Error()
			result.Failed++
			result.Distributed = result.Distributed.Sub(p.Amount)
			logger.WarnCtx(ctx, "yield payment failed",
				zap.String("recipient", p.Account),
				zap.Error(err),
			)
			continue
		}
		result.Succeeded++
	}
	result.Payouts = payouts

	logger.InfoCtx(ctx, "yield distributed",
		zap.Int("recipients", len(payouts)),
		zap.Int("failed", result.Failed),
		zap.String("distributed", result.Distributed.String()),
	)
	return result, nil
}

// Allocate splits total across holders by holding. XRP payouts are truncated
// to whole drops and issued payouts to 15 significant digits, so the sum
// never exceeds total.
func Allocate(holders []Payout, held, total decimal.Decimal, native bool) []Payout {
	out := make([]Payout, len(holders))
	for i, h := range holders {
		amount, _ := h.Holding.Mul(total).QuoRem(held, 18)
		if native {
			amount = amount.Truncate(6)
		} else {
			amount = decimal.RequireFromString(ledger.FormatIssuedValue(amount))
		}
		out[i] = Payout{
			Account: h.Account,
			Holding: h.Holding,
			Share:   h.Holding.Mul(decimal.NewFromInt(100)).DivRound(held, 4),
			Amount:  amount,
		}
	}
	return out
}

func parsePayoutAsset(s string) (ledger.Amount, error) {
	if s == "" || s == "XRP" {
		return ledger.XRP(decimal.Zero), nil
	}
	id, err := parseAssetID(s)
	if err != nil {
		return ledger.Amount{}, errs.Invalid("payoutAsset", "%q must be XRP or CURRENCY.issuer", s)
	}
	return ledger.Issued(id.Currency, id.Issuer, decimal.Zero), nil
}
