package issuance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledgertest"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

// issued returns a ledger where the distributor holds 50 BLD priced at 100.
func issued(t *testing.T) *ledgertest.Ledger {
	t.Helper()
	l := funded()
	asset := ledgertest.NewAsset("BLD", rwa.RealEstate, "1000000", 10_000)
	rate := d("8")
	asset.YieldRate = &rate
	l.Tokenize(t, issuer, asset)
	l.SetLine(distributor, issuer, "BLD", d("50"), d("10000"))
	l.Fund(holderA, d("20"))
	return l
}

func TestSendToken(t *testing.T) {
	l := issued(t)
	l.SetLine(holderA, issuer, "BLD", decimal.Zero, d("1000"))

	res, err := newService(l).SendToken(context.Background(), SendRequest{
		AssetID:     "BLD." + issuer,
		Destination: holderA,
		Amount:      d("10"),
	})
	require.NoError(t, err)

	assert.Equal(t, "tesSUCCESS", res.Code)
	assert.NotEmpty(t, res.Hash)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.Value.Equal(d("1000")))
	assert.True(t, res.BalanceBefore.Equal(d("50")))
	assert.True(t, res.BalanceAfter.Equal(d("40")))
	assert.True(t, l.Balance(holderA, amm.Asset{Currency: "BLD", Issuer: issuer}).Equal(d("10")))
	assert.Zero(t, l.OpenConnections())
}

func TestSendTokenPreconditions(t *testing.T) {
	valid := SendRequest{AssetID: "BLD." + issuer, Destination: holderA, Amount: d("10")}

	tests := []struct {
		name   string
		mutate func(*SendRequest)
		kind   errs.Kind
	}{
		{"malformed asset id", func(r *SendRequest) { r.AssetID = "BLD" }, errs.KindValidation},
		{"malformed destination", func(r *SendRequest) { r.Destination = "0xabc" }, errs.KindInvalidAddress},
		{"zero amount", func(r *SendRequest) { r.Amount = decimal.Zero }, errs.KindValidation},
		{"send to self", func(r *SendRequest) { r.Destination = distributor }, errs.KindValidation},
		{"unknown asset", func(r *SendRequest) { r.AssetID = "SLV." + issuer }, errs.KindAssetNotFound},
		{"unfunded destination", func(r *SendRequest) { r.Destination = stranger }, errs.KindDestinationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := issued(t)
			req := valid
			tt.mutate(&req)

			_, err := newService(l).SendToken(context.Background(), req)

			assert.Equal(t, tt.kind, errs.KindOf(err), err)
			assert.Empty(t, l.Submitted())
			assert.Zero(t, l.OpenConnections())
		})
	}
}

func TestSendTokenInsufficientBalance(t *testing.T) {
	l := issued(t)

	_, err := newService(l).SendToken(context.Background(), SendRequest{
		AssetID:     "BLD." + issuer,
		Destination: holderA,
		Amount:      d("100"),
	})

	var insufficient *errs.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(d("50")))
	assert.True(t, insufficient.Requested.Equal(d("100")))
	assert.True(t, insufficient.Shortfall().Equal(d("50")))
	assert.Equal(t, "BLD."+issuer, insufficient.Asset)
	assert.Empty(t, l.Submitted())
	// the sender balance is read once
	assert.Equal(t, 1, l.Calls("AccountLines"))
	assert.Zero(t, l.Calls("AccountInfo"))
}

func TestSendTokenFromIssuerSkipsBalanceCheck(t *testing.T) {
	l := issued(t)
	svc := NewService(l, ledgertest.Signer(issuer), ledgertest.Signer(issuer), Options{})

	res, err := svc.SendToken(context.Background(), SendRequest{
		AssetID:     "BLD." + issuer,
		Destination: distributor,
		Amount:      d("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "tesSUCCESS", res.Code)
	assert.Equal(t, []string{"Payment"}, l.SubmittedTypes())
}

func TestSendTokenMissingTrustLineIsAdvisory(t *testing.T) {
	l := issued(t)

	_, err := newService(l).SendToken(context.Background(), SendRequest{
		AssetID:     "BLD." + issuer,
		Destination: holderA,
		Amount:      d("10"),
	})

	// the payment is still attempted and the ledger has the final word
	assert.Len(t, l.Submitted(), 1)
	var rejected *errs.LedgerRejectionError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "tecNO_LINE", rejected.Code)
}

// holders returns a ledger where holderA has 30 BLD, holderB 10 and the
// distributor the rest.
func holders(t *testing.T) *ledgertest.Ledger {
	t.Helper()
	l := issued(t)
	l.SetLine(distributor, issuer, "BLD", d("9960"), d("10000"))
	l.SetLine(holderA, issuer, "BLD", d("30"), d("1000"))
	l.SetLine(holderB, issuer, "BLD", d("10"), d("1000"))
	return l
}

func TestDistributeYield(t *testing.T) {
	l := holders(t)
	total := d("100")

	res, err := newService(l).DistributeYield(context.Background(), DistributeRequest{
		AssetID:     "BLD." + issuer,
		PayoutAsset: "XRP",
		TotalAmount: &total,
	})
	require.NoError(t, err)

	require.Len(t, res.Payouts, 2)
	assert.Equal(t, 2, res.Succeeded)
	assert.Zero(t, res.Failed)
	assert.True(t, res.Distributed.Equal(total))
	assert.Equal(t, []string{"Payment", "Payment"}, l.SubmittedTypes())

	xrp := amm.Asset{Currency: amm.BaseCurrency}
	assert.True(t, l.Balance(holderA, xrp).Equal(d("95")), l.Balance(holderA, xrp).String())
	assert.True(t, l.Balance(holderB, xrp).Equal(d("25")))
	assert.True(t, l.Balance(issuer, xrp).Equal(d("900")))
}

func TestDistributeYieldRecordsFailures(t *testing.T) {
	l := holders(t)
	l.QueueResult("Payment", "tecNO_DST_INSUF_XRP")
	total := d("100")

	res, err := newService(l).DistributeYield(context.Background(), DistributeRequest{
		AssetID:     "BLD." + issuer,
		PayoutAsset: "XRP",
		TotalAmount: &total,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, l.Submitted(), 2)

	failed := res.Payouts[0]
	for _, p := range res.Payouts {
		if p.Error != "" {
			failed = p
		}
	}
	assert.Equal(t, "tecNO_DST_INSUF_XRP", failed.Code)
	assert.True(t, res.Distributed.Equal(total.Sub(failed.Amount)))
}

func TestDistributeYieldFromSchedule(t *testing.T) {
	l := holders(t)

	res, err := newService(l).DistributeYield(context.Background(), DistributeRequest{
		AssetID:     "BLD." + issuer,
		PayoutAsset: "XRP",
		Frequency:   rwa.Quarterly,
		DryRun:      true,
	})
	require.NoError(t, err)

	// 40 held tokens at 100 each, 8% a year paid quarterly
	require.NotNil(t, res.Schedule)
	assert.True(t, res.TotalAmount.Equal(d("80")), res.TotalAmount.String())
	assert.Empty(t, l.Submitted())
	assert.True(t, res.Distributed.Equal(d("80")))
	for _, p := range res.Payouts {
		assert.Empty(t, p.Hash)
	}
}

func TestDistributeYieldValidation(t *testing.T) {
	l := holders(t)
	svc := newService(l)
	total := d("10")

	_, err := svc.DistributeYield(context.Background(), DistributeRequest{
		AssetID: "BLD." + issuer, PayoutAsset: "XRP",
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.DistributeYield(context.Background(), DistributeRequest{
		AssetID: "BLD." + issuer, PayoutAsset: "dollars", TotalAmount: &total,
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.DistributeYield(context.Background(), DistributeRequest{
		AssetID: "BLD." + issuer, PayoutAsset: "XRP", TotalAmount: &total,
		Exclude: []string{holderA, holderB},
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	huge := d("5000")
	_, err = svc.DistributeYield(context.Background(), DistributeRequest{
		AssetID: "BLD." + issuer, PayoutAsset: "XRP", TotalAmount: &huge,
	})
	assert.Equal(t, errs.KindInsufficientBalance, errs.KindOf(err))
	assert.Empty(t, l.Submitted())
}

func TestAllocate(t *testing.T) {
	holders := []Payout{
		{Account: holderA, Holding: d("1")},
		{Account: holderB, Holding: d("2")},
	}

	payouts := Allocate(holders, d("3"), d("10"), true)

	assert.True(t, payouts[0].Amount.Equal(d("3.333333")))
	assert.True(t, payouts[1].Amount.Equal(d("6.666666")))
	assert.True(t, payouts[0].Share.Equal(d("33.3333")))
	sum := payouts[0].Amount.Add(payouts[1].Amount)
	assert.True(t, sum.LessThanOrEqual(d("10")))

	issued := Allocate(holders, d("3"), d("10"), false)
	assert.True(t, issued[1].Amount.Equal(d("6.66666666666666")), issued[1].Amount.String())
}
