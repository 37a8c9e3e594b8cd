package metadata

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

const issuer = "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH"

func sample(symbol string) Metadata {
	rate := decimal.RequireFromString("6.5")
	return Metadata{
		AssetType:   rwa.RealEstate,
		AssetName:   "Berlin Office Block",
		TokenSymbol: symbol,
		TotalValue:  decimal.RequireFromString("2500000"),
		TotalSupply: 250000,
		YieldRate:   &rate,
		Compliance:  Compliance{KYCRequired: true, Jurisdiction: "DE"},
		Issuer:      issuer,
		TokenizedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Version:     Version,
	}
}

func requireSameMetadata(t *testing.T, want Metadata, got *Metadata) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.AssetType, got.AssetType)
	assert.Equal(t, want.AssetName, got.AssetName)
	assert.Equal(t, want.TokenSymbol, got.TokenSymbol)
	assert.True(t, want.TotalValue.Equal(got.TotalValue), "totalValue %s != %s", want.TotalValue, got.TotalValue)
	assert.Equal(t, want.TotalSupply, got.TotalSupply)
	if want.YieldRate == nil {
		assert.Nil(t, got.YieldRate)
	} else {
		require.NotNil(t, got.YieldRate)
		assert.True(t, want.YieldRate.Equal(*got.YieldRate))
	}
	assert.Equal(t, want.Compliance, got.Compliance)
	assert.Equal(t, want.Issuer, got.Issuer)
	assert.True(t, want.TokenizedAt.Equal(got.TokenizedAt))
	assert.Equal(t, want.Version, got.Version)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	noYield := sample("GLD")
	noYield.YieldRate = nil
	noYield.AssetType = rwa.Commodity
	noYield.Compliance = Compliance{}

	for _, m := range []Metadata{sample("BLD"), noYield} {
		t.Run(m.TokenSymbol, func(t *testing.T) {
			memo, err := Encode(m)
			require.NoError(t, err)
			assert.Equal(t, "5257415F544F4B454E495A4154494F4E", memo.MemoType)
			assert.Equal(t, strings.ToUpper(memo.MemoData), memo.MemoData)
			requireSameMetadata(t, m, Decode(memo))
		})
	}
}

func TestEncodeFillsVersion(t *testing.T) {
	m := sample("BLD")
	m.Version = ""
	memo, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, Version, Decode(memo).Version)
}

func TestDecodeIgnoresForeignMemos(t *testing.T) {
	good, err := Encode(sample("BLD"))
	require.NoError(t, err)

	testcases := []struct {
		name string
		memo ledger.Memo
	}{
		{"Empty", ledger.Memo{}},
		{"OtherType", ledger.Memo{MemoType: hexEncode([]byte("invoice")), MemoData: good.MemoData}},
		{"TypeNotHex", ledger.Memo{MemoType: "zz", MemoData: good.MemoData}},
		{"DataNotHex", ledger.Memo{MemoType: good.MemoType, MemoData: "not-hex"}},
		{"DataNotJSON", ledger.Memo{MemoType: good.MemoType, MemoData: hexEncode([]byte("hello"))}},
		{"MissingSymbol", ledger.Memo{MemoType: good.MemoType, MemoData: hexEncode([]byte(`{"assetType":"bond","totalValue":"1000","totalSupply":100}`))}},
		{"MissingType", ledger.Memo{MemoType: good.MemoType, MemoData: hexEncode([]byte(`{"tokenSymbol":"BND","totalValue":"1000","totalSupply":100}`))}},
		{"BadValue", ledger.Memo{MemoType: good.MemoType, MemoData: hexEncode([]byte(`{"assetType":"bond","tokenSymbol":"BND","totalValue":"abc","totalSupply":100}`))}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, Decode(tc.memo))
		})
	}
}

func TestDecodeAcceptsNumericValue(t *testing.T) {
	memo := ledger.Memo{
		MemoType: typeMarkerHex,
		MemoData: hexEncode([]byte(`{"assetType":"bond","tokenSymbol":"BND","totalValue":150000,"totalSupply":1000}`)),
	}
	m := Decode(memo)
	require.NotNil(t, m)
	assert.True(t, m.PricePerToken().Equal(decimal.NewFromInt(150)))
	assert.True(t, m.Valued())
}

func TestDecodeUnvaluedRecord(t *testing.T) {
	testcases := []struct {
		name    string
		payload string
	}{
		{"NoValue", `{"assetType":"bond","tokenSymbol":"BND","totalSupply":100}`},
		{"NoSupply", `{"assetType":"bond","tokenSymbol":"BND","totalValue":"1000"}`},
		{"ZeroValue", `{"assetType":"bond","tokenSymbol":"BND","totalValue":"0","totalSupply":100}`},
		{"SymbolAndTypeOnly", `{"assetType":"bond","tokenSymbol":"BND"}`},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			m := Decode(ledger.Memo{MemoType: typeMarkerHex, MemoData: hexEncode([]byte(tc.payload))})
			require.NotNil(t, m)
			assert.Equal(t, "BND", m.TokenSymbol)
			assert.Equal(t, rwa.Bond, m.AssetType)
			assert.False(t, m.Valued())
			assert.True(t, m.PricePerToken().IsZero())
		})
	}
}

func record(account, result string, memos ...ledger.Memo) ledger.TxRecord {
	return ledger.TxRecord{Account: account, Result: result, TransactionType: "AccountSet", Memos: memos}
}

func TestFindTokenizationRecord(t *testing.T) {
	bld, err := Encode(sample("BLD"))
	require.NoError(t, err)
	gld, err := Encode(sample("GLD"))
	require.NoError(t, err)
	junk := ledger.Memo{MemoType: hexEncode([]byte("other")), MemoData: "00"}

	t.Run("FirstMatchInGivenOrder", func(t *testing.T) {
		newer := sample("BLD")
		newer.AssetName = "Reissued"
		newerMemo, err := Encode(newer)
		require.NoError(t, err)

		records := []ledger.TxRecord{
			record(issuer, "tesSUCCESS", junk),
			record(issuer, "tesSUCCESS", gld),
			record(issuer, "tesSUCCESS", newerMemo),
			record(issuer, "tesSUCCESS", bld),
		}
		m := FindTokenizationRecord(records, "BLD")
		require.NotNil(t, m)
		assert.Equal(t, "Reissued", m.AssetName)
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.Nil(t, FindTokenizationRecord([]ledger.TxRecord{record(issuer, "tesSUCCESS", gld)}, "BLD"))
		assert.Nil(t, FindTokenizationRecord(nil, "BLD"))
	})

	t.Run("SkipsFailedAndForeignSenders", func(t *testing.T) {
		records := []ledger.TxRecord{
			record(issuer, "tecNO_PERMISSION", bld),
			record("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", "tesSUCCESS", bld),
		}
		assert.Nil(t, FindTokenizationRecord(records, "BLD"))

		records = append(records, record(issuer, "tesSUCCESS", junk, bld))
		require.NotNil(t, FindTokenizationRecord(records, "BLD"))
	})
}

func TestFromAsset(t *testing.T) {
	rate := decimal.NewFromInt(5)
	asset := &rwa.Asset{
		Type:        rwa.Treasury,
		Name:        "T-Bill 2027",
		TotalValue:  decimal.NewFromInt(1000000),
		TokenSymbol: "TB7",
		TotalSupply: 10000,
		YieldRate:   &rate,
	}
	at := time.Date(2026, 5, 4, 3, 2, 1, 999, time.FixedZone("X", 3600))
	m := FromAsset(asset, Compliance{AccreditedOnly: true}, issuer, at)

	assert.Equal(t, Version, m.Version)
	assert.True(t, m.TokenizedAt.Equal(time.Date(2026, 5, 4, 2, 2, 1, 0, time.UTC)))

	back := m.Asset()
	assert.Equal(t, rwa.AssetID{Currency: "TB7", Issuer: issuer}, back.ID)
	assert.Equal(t, asset.Name, back.Name)
	assert.True(t, back.PricePerToken().Equal(decimal.NewFromInt(100)))
}
