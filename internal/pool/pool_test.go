package pool

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/ledgertest"
	"github.com/LeJamon/rwaxrpl/internal/mocks"
)

const (
	issuer = "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH"
	trader = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	other  = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
)

var (
	bld = amm.Asset{Currency: "BLD", Issuer: issuer}
	gld = amm.Asset{Currency: "GLD", Issuer: issuer}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func newService(l ledger.Dialer, account string) *Service {
	return NewService(l, ledgertest.Signer(account), Options{SafetyBuffer: d("1")})
}

// market returns a ledger with a 10000 BLD / 5000 XRP pool at a 0.5% fee.
// The trader holds 5000 BLD and 10000 XRP.
func market() (*ledgertest.Ledger, *ledger.PoolState) {
	l := ledgertest.New()
	l.Fund(issuer, d("1000"))
	l.Fund(trader, d("10000"))
	l.Fund(other, d("100"))
	l.SetLine(trader, issuer, "BLD", d("5000"), d("1000000"))
	state := l.AddPool(ledger.Issued("BLD", issuer, d("10000")), ledger.XRP(d("5000")), d("7071.067811865475"), 500)
	return l, state
}

// withLP gives the trader a tenth of the pool's LP tokens.
func withLP(l *ledgertest.Ledger, state *ledger.PoolState) {
	l.SetLine(trader, state.Account, state.LPToken.Currency, d("707.1067811865475"), decimal.Zero)
}

func TestParseAsset(t *testing.T) {
	a, err := ParseAsset("from", "XRP")
	require.NoError(t, err)
	assert.True(t, a.IsBase())

	a, err = ParseAsset("from", "BLD."+issuer)
	require.NoError(t, err)
	assert.Equal(t, bld, a)

	for _, bad := range []string{"BLD", "bld." + issuer, "BLD.nope", ""} {
		_, err := ParseAsset("from", bad)
		assert.Error(t, err, bad)
	}
}

func TestGetAMMInfo(t *testing.T) {
	l, state := market()
	withLP(l, state)
	svc := newService(l, trader)

	info, err := svc.GetAMMInfo(context.Background(), InfoRequest{Asset1: bld, Asset2: xrpAsset, Account: trader})
	require.NoError(t, err)

	assert.Equal(t, state.Account, info.Account)
	assert.True(t, info.SpotPrice.Equal(d("0.5")))
	assert.True(t, info.TradingFeePercent.Equal(d("0.5")))
	require.NotNil(t, info.Position)
	assert.True(t, info.Position.SharePct.Equal(d("10")), info.Position.SharePct.String())
	assert.True(t, info.Position.Redeemable1.Equal(d("1000")))
	assert.True(t, info.Position.Redeemable2.Equal(d("500")))
	assert.Zero(t, l.OpenConnections())

	tests := []struct {
		name string
		req  InfoRequest
		kind errs.Kind
	}{
		{"same asset", InfoRequest{Asset1: bld, Asset2: bld}, errs.KindInvalidPair},
		{"no pool", InfoRequest{Asset1: gld, Asset2: xrpAsset}, errs.KindInvalidPair},
		{"bad account", InfoRequest{Asset1: bld, Asset2: xrpAsset, Account: "xyz"}, errs.KindInvalidAddress},
		{"missing issuer", InfoRequest{Asset1: amm.Asset{Currency: "BLD"}, Asset2: xrpAsset}, errs.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetAMMInfo(context.Background(), tt.req)
			assert.Equal(t, tt.kind, errs.KindOf(err), err)
		})
	}
}

func TestCreatePool(t *testing.T) {
	l := ledgertest.New()
	l.Fund(issuer, d("1000"))
	l.Fund(trader, d("10000"))
	l.SetLine(trader, issuer, "BLD", d("5000"), d("1000000"))

	res, err := newService(l, trader).CreatePool(context.Background(), CreateRequest{
		Token:       bld,
		TokenAmount: d("1000"),
		XRPAmount:   d("500"),
		TradingFee:  300,
	})
	require.NoError(t, err)

	assert.Equal(t, "tesSUCCESS", res.Code)
	assert.True(t, res.CreationFee.Equal(d("0.2")))
	assert.True(t, res.InitialLPTokens.Round(4).Equal(d("707.1068")), res.InitialLPTokens.String())
	require.NotNil(t, res.Pool)
	require.NotNil(t, res.Pool.Position)
	assert.True(t, res.Pool.Position.SharePct.Equal(d("100")))
	assert.Equal(t, uint16(300), res.Pool.TradingFee)

	assert.Equal(t, []string{"AMMCreate"}, l.SubmittedTypes())
	assert.True(t, l.Balance(trader, xrpAsset).Equal(d("9499.8")))
	assert.True(t, l.Balance(trader, bld).Equal(d("4000")))
	assert.Zero(t, l.OpenConnections())
}

func TestCreatePoolPreconditions(t *testing.T) {
	t.Run("xrp shortfall includes fee and buffer", func(t *testing.T) {
		l := ledgertest.New()
		l.Fund(issuer, d("1000"))
		l.Fund(trader, d("100"))
		l.SetLine(trader, issuer, "BLD", d("5000"), d("1000000"))

		_, err := newService(l, trader).CreatePool(context.Background(), CreateRequest{
			Token: bld, TokenAmount: d("1000"), XRPAmount: d("100"),
		})

		var insufficient *errs.InsufficientBalanceError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "XRP", insufficient.Asset)
		assert.True(t, insufficient.Requested.Equal(d("101.2")))
		assert.True(t, insufficient.Shortfall().Equal(d("1.2")))
		assert.Empty(t, l.Submitted())
	})

	t.Run("token shortfall", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, trader).CreatePool(context.Background(), CreateRequest{
			Token: gld, TokenAmount: d("10"), XRPAmount: d("10"),
		})
		assert.Equal(t, errs.KindInsufficientBalance, errs.KindOf(err))
		assert.Empty(t, l.Submitted())
	})

	t.Run("pool exists", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, trader).CreatePool(context.Background(), CreateRequest{
			Token: bld, TokenAmount: d("10"), XRPAmount: d("10"),
		})
		assert.Equal(t, errs.KindInvalidPair, errs.KindOf(err))
		assert.Empty(t, l.Submitted())
	})

	t.Run("fee above one percent", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, trader).CreatePool(context.Background(), CreateRequest{
			Token: gld, TokenAmount: d("10"), XRPAmount: d("10"), TradingFee: 1001,
		})
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		assert.Zero(t, l.Calls("Dial"))
	})

	t.Run("xrp as token", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, trader).CreatePool(context.Background(), CreateRequest{
			Token: xrpAsset, TokenAmount: d("10"), XRPAmount: d("10"),
		})
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestDeposit(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		l, state := market()

		res, err := newService(l, trader).Deposit(context.Background(), DepositRequest{
			Token: bld, Mode: DepositBalanced, TokenAmount: ptr("100"), XRPAmount: ptr("50"),
		})
		require.NoError(t, err)

		assert.True(t, res.ExpectedLPTokens.Round(6).Equal(d("70.710678")), res.ExpectedLPTokens.String())
		tx := l.Submitted()[0]
		assert.Equal(t, amm.TfTwoAsset, tx["Flags"])
		assert.Contains(t, tx, "Amount2")

		after := l.Pool(bld, xrpAsset)
		assert.True(t, after.Amount1.Value.Equal(d("10100")))
		assert.True(t, after.Amount2.Value.Equal(d("5050")))
		require.NotNil(t, res.PoolAfter.Position)
		assert.True(t, res.PoolAfter.Position.LPBalance.Round(6).Equal(d("70.710678")))
		assert.True(t, l.Balance(trader, bld).Equal(d("4900")))
		assert.Equal(t, state.Account, res.PoolBefore.Account)
	})

	t.Run("single asset xrp pays the fee", func(t *testing.T) {
		l, _ := market()

		res, err := newService(l, trader).Deposit(context.Background(), DepositRequest{
			Token: bld, Mode: DepositSingleXRP, XRPAmount: ptr("50"),
		})
		require.NoError(t, err)

		// 1% of the pool, less the 0.5% trading fee
		assert.True(t, res.ExpectedLPTokens.Round(6).Equal(d("70.357125")), res.ExpectedLPTokens.String())
		tx := l.Submitted()[0]
		assert.Equal(t, amm.TfSingleAsset, tx["Flags"])
		assert.Equal(t, "50000000", tx["Amount"])
		assert.NotContains(t, tx, "Amount2")
	})

	tests := []struct {
		name string
		req  DepositRequest
		kind errs.Kind
	}{
		{"balanced without xrp", DepositRequest{Token: bld, Mode: DepositBalanced, TokenAmount: ptr("1")}, errs.KindValidation},
		{"single token without amount", DepositRequest{Token: bld, Mode: DepositSingleToken, XRPAmount: ptr("1")}, errs.KindValidation},
		{"unknown mode", DepositRequest{Token: bld, Mode: "both", TokenAmount: ptr("1")}, errs.KindValidation},
		{"negative amount", DepositRequest{Token: bld, Mode: DepositSingleToken, TokenAmount: ptr("-1")}, errs.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := market()
			_, err := newService(l, trader).Deposit(context.Background(), tt.req)
			assert.Equal(t, tt.kind, errs.KindOf(err), err)
			assert.Zero(t, l.Calls("Dial"))
		})
	}

	t.Run("insufficient token", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, trader).Deposit(context.Background(), DepositRequest{
			Token: bld, Mode: DepositSingleToken, TokenAmount: ptr("6000"),
		})
		assert.Equal(t, errs.KindInsufficientBalance, errs.KindOf(err))
		assert.Empty(t, l.Submitted())
		assert.Zero(t, l.OpenConnections())
	})

	t.Run("no pool", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, trader).Deposit(context.Background(), DepositRequest{
			Token: gld, Mode: DepositSingleXRP, XRPAmount: ptr("1"),
		})
		assert.Equal(t, errs.KindInvalidPair, errs.KindOf(err))
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("everything by default", func(t *testing.T) {
		l, state := market()
		withLP(l, state)

		res, err := newService(l, trader).Withdraw(context.Background(), WithdrawRequest{Token: bld, Mode: WithdrawBoth})
		require.NoError(t, err)

		assert.Equal(t, amm.TfWithdrawAll, l.Submitted()[0]["Flags"])
		assert.True(t, res.ExpectedToken.Equal(d("1000")))
		assert.True(t, res.ExpectedXRP.Equal(d("500")))
		assert.True(t, l.Balance(trader, bld).Equal(d("6000")))
		assert.True(t, l.Balance(trader, xrpAsset).Equal(d("10500")))
		require.NotNil(t, res.PoolAfter.Position)
		assert.True(t, res.PoolAfter.Position.LPBalance.IsZero())
	})

	t.Run("percentage", func(t *testing.T) {
		l, state := market()
		withLP(l, state)

		res, err := newService(l, trader).Withdraw(context.Background(), WithdrawRequest{
			Token: bld, Mode: WithdrawBoth, Percentage: ptr("50"),
		})
		require.NoError(t, err)

		tx := l.Submitted()[0]
		assert.Equal(t, amm.TfLPToken, tx["Flags"])
		assert.Contains(t, tx, "LPTokenIn")
		assert.True(t, res.ExpectedToken.Equal(d("500")))
		assert.True(t, res.ExpectedXRP.Equal(d("250")))
	})

	t.Run("single asset within the proportional share", func(t *testing.T) {
		l, state := market()
		withLP(l, state)

		res, err := newService(l, trader).Withdraw(context.Background(), WithdrawRequest{
			Token: bld, Mode: WithdrawSingleXRP, XRPAmount: ptr("60"),
		})
		require.NoError(t, err)

		assert.Equal(t, amm.TfSingleAsset, l.Submitted()[0]["Flags"])
		assert.True(t, res.ExpectedXRP.Equal(d("60")))
		assert.True(t, l.Balance(trader, xrpAsset).Equal(d("10060")))
	})

	t.Run("single asset without an amount burns everything", func(t *testing.T) {
		l, state := market()
		withLP(l, state)

		res, err := newService(l, trader).Withdraw(context.Background(), WithdrawRequest{
			Token: bld, Mode: WithdrawSingleXRP,
		})
		require.NoError(t, err)

		// 5000 * (1 - 0.9^2) * (1 - 0.005)
		assert.True(t, res.ExpectedXRP.Round(6).Equal(d("945.25")), res.ExpectedXRP.String())
		assert.Equal(t, amm.TfOneAssetWithdrawAll, l.Submitted()[0]["Flags"])
		assert.True(t, l.Balance(trader, xrpAsset).Round(6).Equal(d("10945.25")))
	})

	t.Run("single asset above the guard", func(t *testing.T) {
		l, state := market()
		withLP(l, state)

		// proportional share is 1000 BLD, so the guard sits at 1100
		_, err := newService(l, trader).Withdraw(context.Background(), WithdrawRequest{
			Token: bld, Mode: WithdrawSingleToken, TokenAmount: ptr("1200"),
		})

		var verr *errs.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "tokenAmount", verr.Field)
		assert.Empty(t, l.Submitted())
	})

	t.Run("more lp tokens than held", func(t *testing.T) {
		l, state := market()
		withLP(l, state)

		_, err := newService(l, trader).Withdraw(context.Background(), WithdrawRequest{
			Token: bld, Mode: WithdrawLPTokens, LPTokenAmount: ptr("800"),
		})
		assert.Equal(t, errs.KindInsufficientBalance, errs.KindOf(err))
		assert.Empty(t, l.Submitted())
	})

	t.Run("no position", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, other).Withdraw(context.Background(), WithdrawRequest{Token: bld, Mode: WithdrawBoth})
		assert.Equal(t, errs.KindInsufficientBalance, errs.KindOf(err))
	})

	t.Run("validation", func(t *testing.T) {
		l, _ := market()
		svc := newService(l, trader)
		for _, req := range []WithdrawRequest{
			{Token: bld, Mode: WithdrawLPTokens},
			{Token: bld, Mode: WithdrawBoth, Percentage: ptr("101")},
			{Token: bld, Mode: WithdrawBoth, Percentage: ptr("10"), LPTokenAmount: ptr("1")},
			{Token: bld, Mode: "half"},
		} {
			_, err := svc.Withdraw(context.Background(), req)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err), req)
		}
		assert.Zero(t, l.Calls("Dial"))
	})

	t.Run("percentage outside both_assets", func(t *testing.T) {
		l, _ := market()
		svc := newService(l, trader)
		for _, mode := range []WithdrawMode{WithdrawSingleToken, WithdrawSingleXRP} {
			_, err := svc.Withdraw(context.Background(), WithdrawRequest{
				Token: bld, Mode: mode, Percentage: ptr("50"), TokenAmount: ptr("10"), XRPAmount: ptr("10"),
			})
			var invalid *errs.ValidationError
			require.ErrorAs(t, err, &invalid, mode)
			assert.Equal(t, "percentage", invalid.Field)
		}
		assert.Zero(t, l.Calls("Dial"))
		assert.Empty(t, l.Submitted())
	})
}

func TestEstimateSwap(t *testing.T) {
	l, _ := market()

	q, err := newService(l, trader).EstimateSwap(context.Background(), SwapRequest{
		From: xrpAsset, To: bld, Amount: ptr("100"),
	})
	require.NoError(t, err)

	// 99.5 * 10000 / 5099.5
	assert.True(t, q.ExpectedOutput.Round(3).Equal(d("195.117")), q.ExpectedOutput.String())
	assert.True(t, q.MinimumOutput.Round(2).Equal(d("193.17")), q.MinimumOutput.String())
	assert.True(t, q.PriceImpact.Equal(d("1.960784")), q.PriceImpact.String())
	assert.True(t, q.SpotPrice.Equal(d("2")))
	assert.Equal(t, []string{"XRP", "BLD." + issuer}, q.Route)
	assert.Empty(t, l.Submitted())
	assert.Zero(t, l.OpenConnections())
}

func TestSwapOutputBoundary(t *testing.T) {
	tests := []struct {
		name    string
		desired string
		ok      bool
	}{
		{"at the reserve", "10000", false},
		{"above the reserve", "10100", false},
		{"just under the reserve", "9900", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := market()
			svc := newService(l, trader)
			req := SwapRequest{From: xrpAsset, To: bld, DesiredOutput: ptr(tt.desired)}

			q, err := svc.EstimateSwap(context.Background(), req)
			if tt.ok {
				require.NoError(t, err)
				// 9900 * 5000 / 100 * 1.005
				assert.True(t, q.Input.Equal(d("497475")), q.Input.String())
				return
			}
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))

			_, err = svc.Swap(context.Background(), req)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
			assert.Empty(t, l.Submitted())
		})
	}
}

func TestSwap(t *testing.T) {
	t.Run("xrp to token", func(t *testing.T) {
		l, _ := market()

		res, err := newService(l, trader).Swap(context.Background(), SwapRequest{
			From: xrpAsset, To: bld, Amount: ptr("100"),
		})
		require.NoError(t, err)

		assert.Equal(t, "tesSUCCESS", res.Code)
		assert.True(t, res.Delivered.Round(3).Equal(d("195.117")), res.Delivered.String())
		assert.Empty(t, res.Warnings)
		assert.True(t, l.Balance(trader, bld).Round(3).Equal(d("5195.117")))

		tx := l.Submitted()[0]
		assert.Equal(t, trader, tx["Destination"])
		assert.Equal(t, "100000000", tx["SendMax"])
		assert.Contains(t, tx, "DeliverMin")
		assert.NotContains(t, tx, "Paths")
	})

	t.Run("token to token through xrp", func(t *testing.T) {
		l, _ := market()
		l.SetLine(trader, issuer, "GLD", decimal.Zero, decimal.Zero)
		l.AddPool(ledger.Issued("GLD", issuer, d("2000")), ledger.XRP(d("5000")), d("3162.27766"), 0)

		res, err := newService(l, trader).Swap(context.Background(), SwapRequest{
			From: bld, To: gld, Amount: ptr("100"),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"BLD." + issuer, "XRP", "GLD." + issuer}, res.Quote.Route)
		assert.Contains(t, l.Submitted()[0], "Paths")
		assert.True(t, res.Delivered.IsPositive())
		assert.True(t, l.Balance(trader, gld).Equal(res.Delivered))
		assert.True(t, l.Balance(trader, bld).Equal(d("4900")))
	})

	t.Run("insufficient input", func(t *testing.T) {
		l, _ := market()
		_, err := newService(l, trader).Swap(context.Background(), SwapRequest{
			From: bld, To: xrpAsset, Amount: ptr("5001"),
		})
		assert.Equal(t, errs.KindInsufficientBalance, errs.KindOf(err))
		assert.Empty(t, l.Submitted())
	})

	t.Run("settlement without delivered amount", func(t *testing.T) {
		l, _ := market()
		l.QueueResult("Payment", "tesSUCCESS")

		res, err := newService(l, trader).Swap(context.Background(), SwapRequest{
			From: xrpAsset, To: bld, Amount: ptr("100"),
		})
		require.NoError(t, err)
		assert.Len(t, res.Warnings, 1)
	})

	t.Run("rejected at the minimum", func(t *testing.T) {
		l, _ := market()
		l.QueueResult("Payment", "tecPATH_PARTIAL")

		_, err := newService(l, trader).Swap(context.Background(), SwapRequest{
			From: xrpAsset, To: bld, Amount: ptr("100"),
		})
		var rejected *errs.LedgerRejectionError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "tecPATH_PARTIAL", rejected.Code)
	})

	t.Run("validation", func(t *testing.T) {
		l, _ := market()
		svc := newService(l, trader)
		for _, req := range []SwapRequest{
			{From: xrpAsset, To: bld},
			{From: xrpAsset, To: bld, Amount: ptr("1"), DesiredOutput: ptr("1")},
			{From: xrpAsset, To: xrpAsset, Amount: ptr("1")},
			{From: xrpAsset, To: bld, Amount: ptr("1"), Slippage: ptr("60")},
		} {
			_, err := svc.Swap(context.Background(), req)
			assert.Error(t, err)
		}
		assert.Zero(t, l.Calls("Dial"))
	})
}

func TestSwapReportsSlippageAboveTolerance(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockLedger(ctrl)
	dialer := mocks.NewMockDialer(ctrl)

	state := &ledger.PoolState{
		Account:    "rAMMPool0001",
		Amount1:    ledger.XRP(d("5000")),
		Amount2:    ledger.Issued("BLD", issuer, d("10000")),
		LPToken:    ledger.Issued("03000000000000000000000000000000000001", "rAMMPool0001", d("7071")),
		TradingFee: 500,
	}
	delivered := ledger.Issued("BLD", issuer, d("190"))

	dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil)
	conn.EXPECT().AMMInfo(gomock.Any(), xrpAsset, bld).Return(state, nil)
	conn.EXPECT().AccountInfo(gomock.Any(), trader).Return(&ledger.AccountInfo{Account: trader, Balance: d("1000")}, nil)
	conn.EXPECT().SubmitAndWait(gomock.Any(), gomock.Any(), gomock.Any()).Return(&ledger.SubmitResult{
		Hash:            "C0FFEE",
		Code:            "tesSUCCESS",
		LedgerIndex:     77,
		Validated:       true,
		DeliveredAmount: &delivered,
	}, nil)
	conn.EXPECT().Close().Return(nil)

	res, err := newService(dialer, trader).Swap(context.Background(), SwapRequest{
		From: xrpAsset, To: bld, Amount: ptr("100"), Slippage: ptr("1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []uint16{500}, res.Quote.TradingFees)
	assert.True(t, res.Quote.ExpectedOutput.Round(3).Equal(d("195.117")), res.Quote.ExpectedOutput.String())
	// (195.117 - 190) / 195.117
	assert.True(t, res.RealizedSlippage.Round(2).Equal(d("2.62")), res.RealizedSlippage.String())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "exceeded")
}

func TestBid(t *testing.T) {
	l, state := market()
	withLP(l, state)
	svc := newService(l, trader)

	res, err := svc.Bid(context.Background(), BidRequest{Asset1: bld, Asset2: xrpAsset, Bid: ptr("10")})
	require.NoError(t, err)
	assert.True(t, res.MinimumBid.IsZero())
	require.NotNil(t, res.Pool)
	assert.Equal(t, trader, res.Pool.AuctionOwner)
	assert.True(t, res.Pool.AuctionPrice.Equal(d("10")))

	// outbidding needs 1% more than the current price
	_, err = svc.Bid(context.Background(), BidRequest{Asset1: bld, Asset2: xrpAsset, Bid: ptr("10")})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bid", verr.Field)

	res, err = svc.Bid(context.Background(), BidRequest{Asset1: bld, Asset2: xrpAsset})
	require.NoError(t, err)
	assert.True(t, res.Bid.Equal(d("10.1")))

	_, err = svc.Bid(context.Background(), BidRequest{Asset1: bld, Asset2: xrpAsset, Bid: ptr("1000")})
	assert.Equal(t, errs.KindInsufficientBalance, errs.KindOf(err))
	assert.Equal(t, []string{"AMMBid", "AMMBid"}, l.SubmittedTypes())
}
