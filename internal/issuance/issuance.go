// Package issuance sequences asset tokenization and token transfers: issuer
// configuration with the metadata record, the distribution trust line, the
// supply payment, lookups by asset id and holder payouts.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/metadata"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

// Step names of the tokenization saga, in order.
const (
	StepConfigureIssuer    = "configure_issuer"
	StepEstablishTrustLine = "establish_trust_line"
	StepIssueSupply        = "issue_supply"
)

const defaultHistoryPageSize = 200

// Options tunes a Service.
type Options struct {
	// HistoryPageSize is how many issuer records are requested per page while
	// searching for a tokenization record.
	HistoryPageSize int
	// Now stamps tokenization records. Defaults to time.Now.
	Now func() time.Time
}

// Service runs issuance operations. The issuer signs configuration, supply
// and payouts; the distributor holds and transfers the supply.
type Service struct {
	dialer      ledger.Dialer
	issuer      ledger.Signer
	distributor ledger.Signer
	opts        Options
}

// NewService creates an issuance Service. issuer may be nil, in which case
// only distributor-side operations are available.
func NewService(dialer ledger.Dialer, issuer, distributor ledger.Signer, opts Options) *Service {
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = defaultHistoryPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{dialer: dialer, issuer: issuer, distributor: distributor, opts: opts}
}

// TokenizeRequest describes the asset to issue.
type TokenizeRequest struct {
	Type        rwa.AssetType       `json:"type"`
	Name        string              `json:"name"`
	TotalValue  decimal.Decimal     `json:"totalValue"`
	TokenSymbol string              `json:"tokenSymbol"`
	TotalSupply int64               `json:"totalSupply"`
	YieldRate   *decimal.Decimal    `json:"yieldRate,omitempty"`
	Compliance  metadata.Compliance `json:"compliance"`
}

func (r TokenizeRequest) asset() *rwa.Asset {
	return &rwa.Asset{
		Type:        r.Type,
		Name:        r.Name,
		TotalValue:  r.TotalValue,
		TokenSymbol: r.TokenSymbol,
		TotalSupply: r.TotalSupply,
		YieldRate:   r.YieldRate,
	}
}

// TokenizeResult reports a completed tokenization.
type TokenizeResult struct {
	AssetID       string            `json:"assetId"`
	Asset         *rwa.Asset        `json:"asset"`
	Metadata      metadata.Metadata `json:"metadata"`
	PricePerToken decimal.Decimal   `json:"pricePerToken"`
	Issuer        string            `json:"issuer"`
	Distributor   string            `json:"distributor"`
	Steps         []errs.Step       `json:"steps"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// TokenizeAsset validates the asset, records its metadata on the issuer,
// opens the distributor's trust line and pays it the full supply. A failure
// in the first step is returned as is. A failure after it returns a
// *errs.PartialCompletionError listing the settled steps; nothing is rolled
// back and the call must not be blindly retried.
func (s *Service) TokenizeAsset(ctx context.Context, req TokenizeRequest) (*TokenizeResult, error) {
	asset := req.asset()
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if s.issuer == nil {
		return nil, errs.Invalid("issuer", "no issuing credential configured")
	}
	issuer, distributor := s.issuer.Address(), s.distributor.Address()
	if issuer == distributor {
		return nil, errs.Invalid("distributor", "issuing and distribution accounts must differ")
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx = logger.WithFields(ctx,
		zap.String("operation", "tokenize_asset"),
		zap.String("symbol", asset.TokenSymbol),
		zap.String("issuer", issuer),
	)

	var existing *metadata.Metadata
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := conn.AccountInfo(gctx, issuer)
		return err
	})
	g.Go(func() error {
		_, err := conn.AccountInfo(gctx, distributor)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = metadata.NewIndex(issuer, s.opts.HistoryPageSize).Lookup(gctx, conn, asset.TokenSymbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &TokenizeResult{
		AssetID:       rwa.GenerateAssetID(asset.TokenSymbol, issuer),
		PricePerToken: asset.PricePerToken(),
		Issuer:        issuer,
		Distributor:   distributor,
	}
	if existing != nil {
		msg := fmt.Sprintf("%s was already tokenized by %s; lookups by asset id resolve to the most recent record returned by the ledger", asset.TokenSymbol, issuer)
		result.Warnings = append(result.Warnings, msg)
		logger.WarnCtx(ctx, "re-tokenizing an existing symbol")
	}

	md := metadata.FromAsset(asset, req.Compliance, issuer, s.opts.Now())
	memo, err := metadata.Encode(md)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	result.Metadata = md

	configure := ledger.AccountSet(issuer, ledger.AsfDefaultRipple).WithMemos(memo)
	res, err := ledger.Submit(ctx, conn, configure, s.issuer)
	if err != nil {
		return nil, err
	}
	result.Steps = append(result.Steps, res.Step(StepConfigureIssuer))

	supply := ledger.Issued(asset.TokenSymbol, issuer, decimal.NewFromInt(asset.TotalSupply))

	res, err = ledger.Submit(ctx, conn, ledger.TrustSet(distributor, supply), s.distributor)
	if err != nil {
		return nil, s.partial(ctx, result.Steps, StepEstablishTrustLine, err)
	}
	result.Steps = append(result.Steps, res.Step(StepEstablishTrustLine))

	res, err = ledger.Submit(ctx, conn, ledger.Payment(issuer, distributor, supply), s.issuer)
	if err != nil {
		return nil, s.partial(ctx, result.Steps, StepIssueSupply, err)
	}
	result.Steps = append(result.Steps, res.Step(StepIssueSupply))

	asset.ID = rwa.AssetID{Currency: asset.TokenSymbol, Issuer: issuer}
	result.Asset = asset

	logger.InfoCtx(ctx, "asset tokenized",
		zap.String("assetId", result.AssetID),
		zap.Int64("supply", asset.TotalSupply),
	)
	return result, nil
}

func (s *Service) partial(ctx context.Context, completed []errs.Step, failed string, cause error) error {
	logger.ErrorCtx(ctx, cause,
		zap.String("failedStep", failed),
		zap.Int("completedSteps", len(completed)),
	)
	return &errs.PartialCompletionError{
		Operation: "tokenize_asset",
		Completed: completed,
		Failed:    failed,
		Cause:     cause,
	}
}

// AssetInfo is the resolved view of a tokenized asset.
type AssetInfo struct {
	AssetID           string             `json:"assetId"`
	Asset             *rwa.Asset         `json:"asset"`
	Metadata          *metadata.Metadata `json:"metadata"`
	PricePerToken     decimal.Decimal    `json:"pricePerToken"`
	CirculatingSupply *decimal.Decimal   `json:"circulatingSupply,omitempty"`
	CirculatingValue  *decimal.Decimal   `json:"circulatingValue,omitempty"`
}

// GetAssetInfo resolves an asset id to its tokenization record.
func (s *Service) GetAssetInfo(ctx context.Context, assetID string) (*AssetInfo, error) {
	id, err := parseAssetID(assetID)
	if err != nil {
		return nil, err
	}
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return s.resolve(ctx, conn, id)
}

func parseAssetID(assetID string) (rwa.AssetID, error) {
	id, ok := rwa.ParseAssetID(assetID)
	if !ok {
		return rwa.AssetID{}, errs.Invalid("assetId", "%q must have the form CURRENCY.issuer", assetID)
	}
	if err := ledger.ValidateCurrency("assetId", id.Currency); err != nil {
		return rwa.AssetID{}, err
	}
	if err := ledger.ValidateAddress(id.Issuer); err != nil {
		return rwa.AssetID{}, err
	}
	return id, nil
}

// resolve finds the tokenization record for id. Missing issuers and missing
// records are both reported as *errs.AssetNotFoundError.
func (s *Service) resolve(ctx context.Context, conn ledger.Ledger, id rwa.AssetID) (*AssetInfo, error) {
	md, err := metadata.NewIndex(id.Issuer, s.opts.HistoryPageSize).Lookup(ctx, conn, id.Currency)
	var notFound *errs.AccountNotFoundError
	if errors.As(err, &notFound) {
		return nil, &errs.AssetNotFoundError{AssetID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, &errs.AssetNotFoundError{AssetID: id.String()}
	}

	info := &AssetInfo{
		AssetID:       id.String(),
		Asset:         md.Asset(),
		Metadata:      md,
		PricePerToken: md.PricePerToken(),
	}
	obligations, err := conn.GatewayBalances(ctx, id.Issuer)
	if err != nil {
		logger.WarnCtx(ctx, "circulating supply unavailable",
			zap.String("assetId", id.String()),
			zap.Error(err),
		)
		return info, nil
	}
	circulating := obligations[id.Currency]
	value := circulating.Mul(info.PricePerToken)
	info.CirculatingSupply = &circulating
	info.CirculatingValue = &value
	return info, nil
}
