package tools

import (
	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/issuance"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/pool"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

type tokenizeInput struct {
	issuance.TokenizeRequest
}

func (in *tokenizeInput) validate() error {
	if in.Name == "" {
		return errs.Invalid("name", "required")
	}
	asset := &rwa.Asset{
		Type:        in.Type,
		Name:        in.Name,
		TotalValue:  in.TotalValue,
		TokenSymbol: in.TokenSymbol,
		TotalSupply: in.TotalSupply,
		YieldRate:   in.YieldRate,
	}
	return asset.Validate()
}

type assetInput struct {
	AssetID string `json:"assetId"`
}

func (in *assetInput) validate() error {
	if _, ok := rwa.ParseAssetID(in.AssetID); !ok {
		return errs.Invalid("assetId", "%q must be CURRENCY.issuer", in.AssetID)
	}
	return nil
}

type sendInput struct {
	issuance.SendRequest
}

func (in *sendInput) validate() error {
	if _, ok := rwa.ParseAssetID(in.AssetID); !ok {
		return errs.Invalid("assetId", "%q must be CURRENCY.issuer", in.AssetID)
	}
	if err := ledger.ValidateAddress(in.Destination); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return errs.Invalid("amount", "must be positive")
	}
	return nil
}

type accountInput struct {
	Account string `json:"account"`
}

func (in *accountInput) validate() error {
	return ledger.ValidateAddress(in.Account)
}

type yieldInput struct {
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annualRate"`
	Frequency  rwa.Frequency   `json:"frequency"`
}

type distributeInput struct {
	issuance.DistributeRequest
}

func (in *distributeInput) validate() error {
	if _, ok := rwa.ParseAssetID(in.AssetID); !ok {
		return errs.Invalid("assetId", "%q must be CURRENCY.issuer", in.AssetID)
	}
	if in.PayoutAsset == "" {
		in.PayoutAsset = amm.BaseCurrency
	}
	return nil
}

type symbolInput struct {
	Symbol string `json:"symbol"`
}

// SymbolCheck is the outcome of validate_token_symbol.
type SymbolCheck struct {
	Symbol string `json:"symbol"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type createPoolInput struct {
	Token       string          `json:"token"`
	TokenAmount decimal.Decimal `json:"tokenAmount"`
	XRPAmount   decimal.Decimal `json:"xrpAmount"`
	TradingFee  uint16          `json:"tradingFee"`

	req pool.CreateRequest
}

func (in *createPoolInput) validate() error {
	token, err := pool.ParseAsset("token", in.Token)
	if err != nil {
		return err
	}
	in.req = pool.CreateRequest{Token: token, TokenAmount: in.TokenAmount, XRPAmount: in.XRPAmount, TradingFee: in.TradingFee}
	return nil
}

type depositInput struct {
	Token       string           `json:"token"`
	Mode        pool.DepositMode `json:"mode"`
	TokenAmount *decimal.Decimal `json:"tokenAmount,omitempty"`
	XRPAmount   *decimal.Decimal `json:"xrpAmount,omitempty"`

	req pool.DepositRequest
}

func (in *depositInput) validate() error {
	token, err := pool.ParseAsset("token", in.Token)
	if err != nil {
		return err
	}
	in.req = pool.DepositRequest{Token: token, Mode: in.Mode, TokenAmount: in.TokenAmount, XRPAmount: in.XRPAmount}
	return nil
}

type withdrawInput struct {
	Token         string            `json:"token"`
	Mode          pool.WithdrawMode `json:"mode"`
	Percentage    *decimal.Decimal  `json:"percentage,omitempty"`
	LPTokenAmount *decimal.Decimal  `json:"lpTokenAmount,omitempty"`
	TokenAmount   *decimal.Decimal  `json:"tokenAmount,omitempty"`
	XRPAmount     *decimal.Decimal  `json:"xrpAmount,omitempty"`

	req pool.WithdrawRequest
}

func (in *withdrawInput) validate() error {
	token, err := pool.ParseAsset("token", in.Token)
	if err != nil {
		return err
	}
	if in.Mode == "" {
		in.Mode = pool.WithdrawBoth
	}
	in.req = pool.WithdrawRequest{
		Token:         token,
		Mode:          in.Mode,
		Percentage:    in.Percentage,
		LPTokenAmount: in.LPTokenAmount,
		TokenAmount:   in.TokenAmount,
		XRPAmount:     in.XRPAmount,
	}
	return nil
}

type swapInput struct {
	From          string           `json:"from"`
	To            string           `json:"to"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	DesiredOutput *decimal.Decimal `json:"desiredOutput,omitempty"`
	Slippage      *decimal.Decimal `json:"slippage,omitempty"`

	req pool.SwapRequest
}

func (in *swapInput) validate() error {
	from, err := pool.ParseAsset("from", in.From)
	if err != nil {
		return err
	}
	to, err := pool.ParseAsset("to", in.To)
	if err != nil {
		return err
	}
	in.req = pool.SwapRequest{From: from, To: to, Amount: in.Amount, DesiredOutput: in.DesiredOutput, Slippage: in.Slippage}
	return nil
}

type pairInput struct {
	Asset1 string `json:"asset1"`
	Asset2 string `json:"asset2"`

	a1, a2 amm.Asset
}

func (in *pairInput) validate() error {
	var err error
	if in.a1, err = pool.ParseAsset("asset1", in.Asset1); err != nil {
		return err
	}
	if in.a2, err = pool.ParseAsset("asset2", in.Asset2); err != nil {
		return err
	}
	return amm.ValidateAssetPair(in.a1, in.a2)
}

type poolInfoInput struct {
	pairInput
	Account string `json:"account,omitempty"`
}

type bidInput struct {
	pairInput
	Bid *decimal.Decimal `json:"bid,omitempty"`
}
