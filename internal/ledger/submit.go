package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/logger"
)

// Step returns the step log entry for the settled transaction.
func (r *SubmitResult) Step(name string) errs.Step {
	if r == nil {
		return errs.Step{Name: name}
	}
	return errs.Step{Name: name, Hash: r.Hash, LedgerIndex: r.LedgerIndex, Code: r.Code}
}

// Submit submits tx and converts a non-success settlement into a
// *errs.LedgerRejectionError. The result is returned whenever the ledger
// produced one, including on rejection.
func Submit(ctx context.Context, conn Ledger, tx Transaction, signer Signer) (*SubmitResult, error) {
	res, err := conn.SubmitAndWait(ctx, tx, signer)
	if err != nil {
		return nil, err
	}
	if err := CheckResult(res); err != nil {
		logger.WarnCtx(ctx, "transaction rejected",
			zap.String("type", tx.Type()),
			zap.String("account", signer.Address()),
			zap.String("hash", res.Hash),
			zap.String("code", res.Code),
		)
		return res, err
	}
	return res, nil
}
