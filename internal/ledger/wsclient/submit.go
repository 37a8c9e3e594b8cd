package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
)

// errNotValidated keeps the poll loop going.
var errNotValidated = errors.New("transaction not yet validated")

// SubmitAndWait autofills, signs and submits tx, then polls until it is
// validated or its LastLedgerSequence has passed.
func (c *Client) SubmitAndWait(ctx context.Context, tx ledger.Transaction, signer ledger.Signer) (*ledger.SubmitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancel()

	prepared, lastLedger, err := c.autofill(ctx, tx, signer.Address())
	if err != nil {
		return nil, fmt.Errorf("autofill %s: %w", tx.Type(), err)
	}

	blob, hash, err := signer.Sign(prepared)
	if err != nil {
		return nil, err
	}

	var sub struct {
		EngineResult        string `json:"engine_result"`
		EngineResultMessage string `json:"engine_result_message"`
		TxJSON              struct {
			Hash string `json:"hash"`
		} `json:"tx_json"`
	}
	if err := c.request(ctx, "submit", map[string]any{"tx_blob": blob}, &sub); err != nil {
		return nil, err
	}
	if sub.TxJSON.Hash != "" {
		hash = sub.TxJSON.Hash
	}

	logger.InfoCtx(ctx, "transaction submitted",
		zap.String("type", tx.Type()),
		zap.String("account", signer.Address()),
		zap.String("hash", hash),
		zap.String("preliminary", sub.EngineResult),
		zap.Uint32("lastLedgerSequence", lastLedger),
	)

	if ledger.Result(sub.EngineResult).IsFinalPreliminary() {
		return &ledger.SubmitResult{Hash: hash, Code: sub.EngineResult}, nil
	}

	res, err := c.waitForValidation(ctx, hash, lastLedger)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "transaction settled",
		zap.String("type", tx.Type()),
		zap.String("hash", res.Hash),
		zap.String("code", res.Code),
		zap.Uint32("ledgerIndex", res.LedgerIndex),
		zap.Bool("validated", res.Validated),
	)
	return res, nil
}

// autofill copies tx and sets Account, Sequence, Fee and LastLedgerSequence.
func (c *Client) autofill(ctx context.Context, tx ledger.Transaction, account string) (map[string]any, uint32, error) {
	prepared := make(map[string]any, len(tx)+4)
	for k, v := range tx {
		prepared[k] = v
	}
	if a, ok := prepared["Account"].(string); ok && a != "" && a != account {
		return nil, 0, fmt.Errorf("transaction account %s does not match signer %s", a, account)
	}
	prepared["Account"] = account

	var (
		info     *ledger.AccountInfo
		fee      decimal.Decimal
		current  uint32
		reserves *ledger.Reserves
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = c.accountInfo(gctx, account, "current")
		return err
	})
	g.Go(func() error {
		var err error
		fee, current, err = c.openLedgerFee(gctx)
		return err
	})
	if tx.Type() == "AMMCreate" {
		g.Go(func() error {
			var err error
			reserves, err = c.ServerReserves(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if reserves != nil {
		// AMMCreate burns one owner reserve as its fee
		fee = reserves.Increment.Mul(ledger.DropsPerXRP).Truncate(0)
	} else if fee.GreaterThan(decimal.NewFromInt(c.cfg.MaxFeeDrops)) {
		fee = decimal.NewFromInt(c.cfg.MaxFeeDrops)
	}

	lastLedger := current + c.cfg.LastLedgerOffset
	prepared["Sequence"] = info.Sequence
	prepared["Fee"] = fee.String()
	prepared["LastLedgerSequence"] = lastLedger
	if _, ok := prepared["Flags"]; !ok {
		prepared["Flags"] = uint32(0)
	}
	return prepared, lastLedger, nil
}

func (c *Client) openLedgerFee(ctx context.Context) (decimal.Decimal, uint32, error) {
	var res struct {
		Drops struct {
			BaseFee       string `json:"base_fee"`
			OpenLedgerFee string `json:"open_ledger_fee"`
		} `json:"drops"`
		LedgerCurrentIndex uint32 `json:"ledger_current_index"`
	}
	if err := c.call(ctx, "fee", nil, &res); err != nil {
		return decimal.Zero, 0, err
	}
	base, err := parseValue(res.Drops.BaseFee)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("fee: base_fee: %w", err)
	}
	open, err := parseValue(res.Drops.OpenLedgerFee)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("fee: open_ledger_fee: %w", err)
	}
	return decimal.Max(base, open), res.LedgerCurrentIndex, nil
}

type txResponse struct {
	Hash        string          `json:"hash"`
	LedgerIndex uint32          `json:"ledger_index"`
	Validated   bool            `json:"validated"`
	Meta        json.RawMessage `json:"meta"`
}

// waitForValidation polls tx until the transaction is in a validated ledger.
// Once the validated ledger passes lastLedger without it the result is
// tefMAX_LEDGER.
func (c *Client) waitForValidation(ctx context.Context, hash string, lastLedger uint32) (*ledger.SubmitResult, error) {
	var result *ledger.SubmitResult

	operation := func() error {
		var res txResponse
		err := c.request(ctx, "tx", map[string]any{"transaction": hash}, &res)
		switch {
		case err == nil && res.Validated:
			r, err := settled(hash, res)
			if err != nil {
				return backoff.Permanent(err)
			}
			result = r
			return nil
		case err == nil, isRPCCode(err, codeTxNotFound):
			validated, verr := c.validatedLedgerIndex(ctx)
			if verr == nil && validated > lastLedger {
				result = &ledger.SubmitResult{Hash: hash, Code: string(ledger.TefMAX_LEDGER)}
				return nil
			}
			logger.DebugCtx(ctx, "waiting for validation",
				zap.String("hash", hash),
				zap.Uint32("validatedLedger", validated),
			)
			return errNotValidated
		default:
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) && transientCodes[rpcErr.Code] {
				return err
			}
			return backoff.Permanent(err)
		}
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(c.cfg.PollInterval), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		if errors.Is(err, errNotValidated) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("transaction %s not validated within %s: %w", hash, c.cfg.SubmitTimeout, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("waiting for %s: %w", hash, err)
	}
	return result, nil
}

func settled(hash string, res txResponse) (*ledger.SubmitResult, error) {
	out := &ledger.SubmitResult{
		Hash:        firstNonEmpty(res.Hash, hash),
		LedgerIndex: res.LedgerIndex,
		Validated:   true,
	}
	if len(res.Meta) == 0 {
		return nil, fmt.Errorf("tx %s: validated without metadata", hash)
	}
	var meta metaFields
	if err := json.Unmarshal(res.Meta, &meta); err != nil {
		return nil, fmt.Errorf("tx %s: decode meta: %w", hash, err)
	}
	if err := json.Unmarshal(res.Meta, &out.Meta); err != nil {
		return nil, fmt.Errorf("tx %s: decode meta: %w", hash, err)
	}
	out.Code = meta.TransactionResult
	if len(meta.DeliveredAmount) > 0 && string(meta.DeliveredAmount) != `"unavailable"` {
		delivered, err := ledger.ParseAmount(meta.DeliveredAmount)
		if err == nil {
			out.DeliveredAmount = &delivered
		}
	}
	return out, nil
}
