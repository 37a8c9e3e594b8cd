package ledger

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
)

const issuer = "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH"

func TestValidateAddress(t *testing.T) {
	for _, good := range []string{
		issuer,
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
	} {
		require.NoError(t, ValidateAddress(good), good)
	}

	testcases := []struct {
		name    string
		address string
	}{
		{"Empty", ""},
		{"WrongPrefix", "xN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH"},
		{"AmbiguousZero", "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fz0H"},
		{"TooShort", "rN7n7otQ"},
		{"TooLong", issuer + "abcdefgh"},
		{"BadChecksum", "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRJ"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAddress(tc.address)
			var addrErr *errs.InvalidAddressError
			require.ErrorAs(t, err, &addrErr)
			assert.Equal(t, tc.address, addrErr.Address)
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	require.NoError(t, ValidateCurrency("currency", "BLD"))
	assert.Error(t, ValidateCurrency("currency", "bld"))
	assert.Error(t, ValidateCurrency("currency", "BLDX"))
}

func TestAmountWire(t *testing.T) {
	xrp := XRP(decimal.RequireFromString("12.5"))
	assert.Equal(t, "12500000", xrp.Wire())
	assert.True(t, xrp.IsNative())
	assert.Equal(t, amm.Asset{Currency: "XRP"}, xrp.Asset())

	iou := Issued("BLD", issuer, decimal.RequireFromString("100.25"))
	assert.Equal(t, map[string]any{"currency": "BLD", "issuer": issuer, "value": "100.25"}, iou.Wire())
	assert.False(t, iou.IsNative())
}

func TestFormatIssuedValue(t *testing.T) {
	testcases := map[string]string{
		"100":                  "100",
		"0.123456789012345678": "0.123456789012345",
		"123456.7890123456789": "123456.789012345",
		"1234567890123456789":  "1234567890123456789",
		"-5.5":                 "-5.5",
		"198.1234567890123456": "198.123456789012",
	}
	for in, want := range testcases {
		assert.Equal(t, want, FormatIssuedValue(decimal.RequireFromString(in)), in)
	}
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount(json.RawMessage(`"1500000"`))
	require.NoError(t, err)
	assert.True(t, a.IsNative())
	assert.True(t, a.Value.Equal(decimal.RequireFromString("1.5")))

	a, err = ParseAmount(json.RawMessage(`{"currency":"BLD","issuer":"` + issuer + `","value":"42.5"}`))
	require.NoError(t, err)
	assert.Equal(t, "BLD", a.Currency)
	assert.Equal(t, issuer, a.Issuer)
	assert.True(t, a.Value.Equal(decimal.RequireFromString("42.5")))

	for _, bad := range []string{``, `null`, `"abc"`, `{"currency":"BLD","value":"x"}`, `[1]`} {
		_, err := ParseAmount(json.RawMessage(bad))
		assert.Error(t, err, bad)
	}
}

func TestIsLPTokenCurrency(t *testing.T) {
	assert.True(t, IsLPTokenCurrency("03930D02208264E2E40EC1B0C09E4DB96EE197B1"))
	assert.False(t, IsLPTokenCurrency("BLD"))
	assert.False(t, IsLPTokenCurrency("524C555344000000000000000000000000000000"))
}

func TestCheckResult(t *testing.T) {
	require.NoError(t, CheckResult(&SubmitResult{Code: "tesSUCCESS"}))

	err := CheckResult(&SubmitResult{Code: "tecNO_LINE", Hash: "ABC"})
	var rej *errs.LedgerRejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "tecNO_LINE", rej.Code)
	assert.Equal(t, "ABC", rej.Hash)
	assert.Contains(t, rej.Remediation, "trust line")
	assert.Equal(t, errs.KindLedgerRejection, errs.KindOf(err))

	err = CheckResult(&SubmitResult{Code: "tecSOMETHING_NEW"})
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "tecSOMETHING_NEW", rej.Code)
	assert.Empty(t, rej.Remediation)

	require.Error(t, CheckResult(nil))
}

func TestResultCategories(t *testing.T) {
	assert.True(t, TesSUCCESS.IsSuccess())
	assert.True(t, TecNO_LINE.IsTec())
	assert.True(t, TemBAD_AMOUNT.IsFinalPreliminary())
	assert.True(t, TefPAST_SEQ.IsFinalPreliminary())
	assert.False(t, TerQUEUED.IsFinalPreliminary())
	assert.False(t, TecNO_LINE.IsFinalPreliminary())
}

func TestTransactionBuilders(t *testing.T) {
	xrp := amm.Asset{Currency: "XRP"}
	bld := amm.Asset{Currency: "BLD", Issuer: issuer}

	tx := Payment("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", issuer, XRP(decimal.NewFromInt(1)))
	assert.Equal(t, "Payment", tx.Type())
	assert.Equal(t, "1000000", tx["Amount"])

	tx = AccountSet(issuer, AsfDefaultRipple).WithMemos(Memo{MemoType: "AA", MemoData: "BB"})
	assert.Equal(t, AsfDefaultRipple, tx["SetFlag"])
	assert.Equal(t, []any{map[string]any{"Memo": map[string]any{"MemoType": "AA", "MemoData": "BB"}}}, tx["Memos"])

	tx = AMMDeposit(issuer, bld, xrp, nil, nil, amm.TfSingleAsset).WithFlags(amm.TfLimitLPToken)
	assert.Equal(t, amm.TfSingleAsset|amm.TfLimitLPToken, tx["Flags"])
	assert.Equal(t, map[string]any{"currency": "XRP"}, tx["Asset2"])
	assert.NotContains(t, tx, "Amount")

	cross := CrossCurrencyPayment(issuer, issuer, Issued("BLD", issuer, decimal.NewFromInt(10)),
		XRP(decimal.NewFromInt(5)), Issued("BLD", issuer, decimal.NewFromInt(9)), nil)
	assert.Equal(t, TfPartialPayment, cross["Flags"])
	assert.NotContains(t, cross, "Paths")
}

func TestPoolStateReserve(t *testing.T) {
	p := &PoolState{
		Amount1: XRP(decimal.NewFromInt(5000)),
		Amount2: Issued("BLD", issuer, decimal.NewFromInt(10000)),
	}
	v, ok := p.Reserve(amm.Asset{Currency: "BLD", Issuer: issuer})
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(10000)))

	v, ok = p.Reserve(amm.Asset{Currency: "XRP"})
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(5000)))

	_, ok = p.Reserve(amm.Asset{Currency: "GLD", Issuer: issuer})
	assert.False(t, ok)
}
