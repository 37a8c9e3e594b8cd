package tools

import (
	"context"

	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/issuance"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/pool"
	"github.com/LeJamon/rwaxrpl/internal/portfolio"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

// Deps are the collaborators the tools run against.
type Deps struct {
	Dialer ledger.Dialer
	// Operator signs transfers, pool operations and holds issued supply.
	// Read-only tools work without it.
	Operator ledger.Signer
	// Issuer signs tokenization and yield payouts. Optional.
	Issuer ledger.Signer

	Portfolio portfolio.Options
	Issuance  issuance.Options
	Pool      pool.Options
}

// New returns a registry holding every tool.
func New(deps Deps) *Registry {
	c := &catalog{
		deps:      deps,
		portfolio: portfolio.NewService(deps.Dialer, deps.Portfolio),
		issuance:  issuance.NewService(deps.Dialer, deps.Issuer, deps.Operator, deps.Issuance),
		pool:      pool.NewService(deps.Dialer, deps.Operator, deps.Pool),
	}
	r := NewRegistry()
	c.register(r)
	return r
}

type catalog struct {
	deps      Deps
	portfolio *portfolio.Service
	issuance  *issuance.Service
	pool      *pool.Service
}

func (c *catalog) operator() error {
	if c.deps.Operator == nil {
		return errs.Invalid("wallet.seed", "this tool signs transactions; configure RWA_WALLET_SEED")
	}
	return nil
}

func (c *catalog) issuer() error {
	if err := c.operator(); err != nil {
		return err
	}
	if c.deps.Issuer == nil {
		return errs.Invalid("wallet.issuer_seed", "this tool signs as the issuing account; configure RWA_WALLET_ISSUER_SEED")
	}
	return nil
}

const (
	assetIDConstraint = "CURRENCY.issuer, currency 3 uppercase letters or digits"
	assetConstraint   = "XRP or " + assetIDConstraint
	addressConstraint = "classic address, r followed by 24-33 base58 characters"
	positive          = "positive decimal"
)

func (c *catalog) register(r *Registry) {
	r.MustRegister(&tool[tokenizeInput]{
		name:        "tokenize_asset",
		description: "Record asset metadata on the issuer, open the distribution trust line and issue the full supply",
		params: []Param{
			{Name: "type", Type: "string", Required: true, Constraint: "real_estate | treasury | commodity | bond"},
			{Name: "name", Type: "string", Required: true},
			{Name: "totalValue", Type: "decimal", Required: true, Constraint: "USD, 1000 to 1000000000"},
			{Name: "tokenSymbol", Type: "string", Required: true, Constraint: "3 uppercase letters or digits, not XRP USD EUR BTC ETH"},
			{Name: "totalSupply", Type: "integer", Required: true, Constraint: "100 to 100000000, price per token at least 0.01"},
			{Name: "yieldRate", Type: "decimal", Constraint: "annual percent, 0 to 50"},
			{Name: "compliance", Type: "object", Constraint: "kycRequired, accreditedOnly, jurisdiction"},
		},
		ready: c.issuer,
		run: func(ctx context.Context, in tokenizeInput) (any, error) {
			return c.issuance.TokenizeAsset(ctx, in.TokenizeRequest)
		},
	})

	r.MustRegister(&tool[assetInput]{
		name:        "get_asset_info",
		description: "Resolve an asset id to its tokenization metadata and circulating supply",
		params:      []Param{{Name: "assetId", Type: "string", Required: true, Constraint: assetIDConstraint}},
		run: func(ctx context.Context, in assetInput) (any, error) {
			return c.issuance.GetAssetInfo(ctx, in.AssetID)
		},
	})

	r.MustRegister(&tool[sendInput]{
		name:        "send_token",
		description: "Transfer tokens from the operating account after a balance check",
		params: []Param{
			{Name: "assetId", Type: "string", Required: true, Constraint: assetIDConstraint},
			{Name: "destination", Type: "string", Required: true, Constraint: addressConstraint},
			{Name: "amount", Type: "decimal", Required: true, Constraint: positive},
		},
		ready: c.operator,
		run: func(ctx context.Context, in sendInput) (any, error) {
			return c.issuance.SendToken(ctx, in.SendRequest)
		},
	})

	r.MustRegister(&tool[accountInput]{
		name:        "get_holdings",
		description: "List an account's trust lines classified against tokenization records",
		params:      []Param{{Name: "account", Type: "string", Required: true, Constraint: addressConstraint}},
		run: func(ctx context.Context, in accountInput) (any, error) {
			return c.portfolio.GetHoldings(ctx, in.Account)
		},
	})

	r.MustRegister(&tool[accountInput]{
		name:        "get_portfolio",
		description: "Summarize an account's asset tokens, allocation, LP positions and reserve health",
		params:      []Param{{Name: "account", Type: "string", Required: true, Constraint: addressConstraint}},
		run: func(ctx context.Context, in accountInput) (any, error) {
			return c.portfolio.GetPortfolio(ctx, in.Account)
		},
	})

	r.MustRegister(&tool[yieldInput]{
		name:        "calculate_yield_distribution",
		description: "Split an annual rate on a principal into per-period payouts",
		params: []Param{
			{Name: "principal", Type: "decimal", Required: true, Constraint: positive},
			{Name: "annualRate", Type: "decimal", Required: true, Constraint: "percent, 0 to 50"},
			{Name: "frequency", Type: "string", Required: true, Constraint: "monthly | quarterly | semi_annual | annual"},
		},
		run: func(_ context.Context, in yieldInput) (any, error) {
			return rwa.CalculateYieldDistribution(in.Principal, in.AnnualRate, in.Frequency)
		},
	})

	r.MustRegister(&tool[distributeInput]{
		name:        "distribute_yield",
		description: "Pay one period of yield to every holder of an asset, pro rata",
		params: []Param{
			{Name: "assetId", Type: "string", Required: true, Constraint: assetIDConstraint},
			{Name: "payoutAsset", Type: "string", Constraint: "XRP (default) or " + assetIDConstraint},
			{Name: "totalAmount", Type: "decimal", Constraint: positive + "; derived from the yield schedule when omitted"},
			{Name: "annualRate", Type: "decimal", Constraint: "percent; defaults to the recorded yield rate"},
			{Name: "frequency", Type: "string", Constraint: "required without totalAmount"},
			{Name: "exclude", Type: "array", Constraint: "addresses that receive nothing"},
			{Name: "dryRun", Type: "boolean"},
		},
		ready: c.issuer,
		run: func(ctx context.Context, in distributeInput) (any, error) {
			return c.issuance.DistributeYield(ctx, in.DistributeRequest)
		},
	})

	r.MustRegister(&tool[symbolInput]{
		name:        "validate_token_symbol",
		description: "Check a token symbol against the format and reserved-word rules",
		params:      []Param{{Name: "symbol", Type: "string", Required: true}},
		run: func(_ context.Context, in symbolInput) (any, error) {
			check := SymbolCheck{Symbol: in.Symbol, Valid: true}
			if err := rwa.ValidateTokenSymbol(in.Symbol); err != nil {
				check.Valid = false
				check.Reason = err.Error()
			}
			return check, nil
		},
	})

	r.MustRegister(&tool[createPoolInput]{
		name:        "create_amm_pool",
		description: "Create the AMM pool for a token against XRP",
		params: []Param{
			{Name: "token", Type: "string", Required: true, Constraint: assetIDConstraint},
			{Name: "tokenAmount", Type: "decimal", Required: true, Constraint: positive},
			{Name: "xrpAmount", Type: "decimal", Required: true, Constraint: positive},
			{Name: "tradingFee", Type: "integer", Constraint: "0 to 1000 (1%)"},
		},
		ready: c.operator,
		run: func(ctx context.Context, in createPoolInput) (any, error) {
			return c.pool.CreatePool(ctx, in.req)
		},
	})

	r.MustRegister(&tool[depositInput]{
		name:        "amm_deposit",
		description: "Add liquidity to a token/XRP pool",
		params: []Param{
			{Name: "token", Type: "string", Required: true, Constraint: assetIDConstraint},
			{Name: "mode", Type: "string", Required: true, Constraint: "balanced | single_asset_token | single_asset_xrp"},
			{Name: "tokenAmount", Type: "decimal", Constraint: "required for balanced and single_asset_token"},
			{Name: "xrpAmount", Type: "decimal", Constraint: "required for balanced and single_asset_xrp"},
		},
		ready: c.operator,
		run: func(ctx context.Context, in depositInput) (any, error) {
			return c.pool.Deposit(ctx, in.req)
		},
	})

	r.MustRegister(&tool[withdrawInput]{
		name:        "amm_withdraw",
		description: "Redeem LP tokens from a token/XRP pool",
		params: []Param{
			{Name: "token", Type: "string", Required: true, Constraint: assetIDConstraint},
			{Name: "mode", Type: "string", Constraint: "both_assets (default) | single_asset_token | single_asset_xrp | lp_tokens_amount"},
			{Name: "percentage", Type: "decimal", Constraint: "of the LP balance, up to 100; both_assets only"},
			{Name: "lpTokenAmount", Type: "decimal", Constraint: "required for lp_tokens_amount"},
			{Name: "tokenAmount", Type: "decimal", Constraint: "exact output for single_asset_token"},
			{Name: "xrpAmount", Type: "decimal", Constraint: "exact output for single_asset_xrp"},
		},
		ready: c.operator,
		run: func(ctx context.Context, in withdrawInput) (any, error) {
			return c.pool.Withdraw(ctx, in.req)
		},
	})

	swapParams := []Param{
		{Name: "from", Type: "string", Required: true, Constraint: assetConstraint},
		{Name: "to", Type: "string", Required: true, Constraint: assetConstraint},
		{Name: "amount", Type: "decimal", Constraint: "input to spend; exclusive with desiredOutput"},
		{Name: "desiredOutput", Type: "decimal", Constraint: "output to receive; below the pool reserve"},
		{Name: "slippage", Type: "decimal", Constraint: "tolerance percent, 0 to 50, default 1"},
	}

	r.MustRegister(&tool[swapInput]{
		name:        "amm_swap",
		description: "Swap through AMM pools; issued to issued routes through XRP",
		params:      swapParams,
		ready:       c.operator,
		run: func(ctx context.Context, in swapInput) (any, error) {
			return c.pool.Swap(ctx, in.req)
		},
	})

	r.MustRegister(&tool[swapInput]{
		name:        "estimate_swap",
		description: "Price a swap against live pool reserves without submitting",
		params:      swapParams,
		run: func(ctx context.Context, in swapInput) (any, error) {
			return c.pool.EstimateSwap(ctx, in.req)
		},
	})

	r.MustRegister(&tool[poolInfoInput]{
		name:        "get_amm_info",
		description: "Report a pool's reserves, LP supply, fee and price, with an account's share",
		params: []Param{
			{Name: "asset1", Type: "string", Required: true, Constraint: assetConstraint},
			{Name: "asset2", Type: "string", Required: true, Constraint: assetConstraint},
			{Name: "account", Type: "string", Constraint: addressConstraint},
		},
		run: func(ctx context.Context, in poolInfoInput) (any, error) {
			return c.pool.GetAMMInfo(ctx, pool.InfoRequest{Asset1: in.a1, Asset2: in.a2, Account: in.Account})
		},
	})

	r.MustRegister(&tool[bidInput]{
		name:        "amm_bid",
		description: "Bid LP tokens for a pool's auction slot",
		params: []Param{
			{Name: "asset1", Type: "string", Required: true, Constraint: assetConstraint},
			{Name: "asset2", Type: "string", Required: true, Constraint: assetConstraint},
			{Name: "bid", Type: "decimal", Constraint: "LP tokens; defaults to the minimum outbid price"},
		},
		ready: c.operator,
		run: func(ctx context.Context, in bidInput) (any, error) {
			return c.pool.Bid(ctx, pool.BidRequest{Asset1: in.a1, Asset2: in.a2, Bid: in.Bid})
		},
	})
}
