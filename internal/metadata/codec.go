// Package metadata attaches asset descriptions to ledger memos and recovers
// them from an issuer's transaction history.
package metadata

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/rwa"
)

const (
	// TypeMarker identifies memos written by the issuance flow.
	TypeMarker = "RWA_TOKENIZATION"
	// FormatMarker is the payload content type.
	FormatMarker = "application/json"
	// Version is written into every new record.
	Version = "1.0"
)

var (
	typeMarkerHex   = hexEncode([]byte(TypeMarker))
	formatMarkerHex = hexEncode([]byte(FormatMarker))
)

// Compliance flags carried alongside the asset description.
type Compliance struct {
	KYCRequired    bool   `json:"kycRequired"`
	AccreditedOnly bool   `json:"accreditedOnly"`
	Jurisdiction   string `json:"jurisdiction,omitempty"`
}

// Metadata is the JSON document stored in the tokenization memo.
type Metadata struct {
	AssetType   rwa.AssetType    `json:"assetType"`
	AssetName   string           `json:"assetName"`
	TokenSymbol string           `json:"tokenSymbol"`
	TotalValue  decimal.Decimal  `json:"totalValue"`
	TotalSupply int64            `json:"totalSupply"`
	YieldRate   *decimal.Decimal `json:"yieldRate,omitempty"`
	Compliance  Compliance       `json:"compliance"`
	Issuer      string           `json:"issuer"`
	TokenizedAt time.Time        `json:"tokenizedAt"`
	Version     string           `json:"version"`
}

// FromAsset builds the record written when asset is issued by issuer.
func FromAsset(asset *rwa.Asset, compliance Compliance, issuer string, at time.Time) Metadata {
	return Metadata{
		AssetType:   asset.Type,
		AssetName:   asset.Name,
		TokenSymbol: asset.TokenSymbol,
		TotalValue:  asset.TotalValue,
		TotalSupply: asset.TotalSupply,
		YieldRate:   asset.YieldRate,
		Compliance:  compliance,
		Issuer:      issuer,
		TokenizedAt: at.UTC().Truncate(time.Second),
		Version:     Version,
	}
}

// Asset returns the asset the metadata describes.
func (m *Metadata) Asset() *rwa.Asset {
	return &rwa.Asset{
		ID:          rwa.AssetID{Currency: m.TokenSymbol, Issuer: m.Issuer},
		Type:        m.AssetType,
		Name:        m.AssetName,
		TotalValue:  m.TotalValue,
		TokenSymbol: m.TokenSymbol,
		TotalSupply: m.TotalSupply,
		YieldRate:   m.YieldRate,
	}
}

// PricePerToken is TotalValue / TotalSupply.
func (m *Metadata) PricePerToken() decimal.Decimal {
	return rwa.PricePerToken(m.TotalValue, m.TotalSupply)
}

// Valued reports whether the record carries enough to price a holding.
func (m *Metadata) Valued() bool {
	return m != nil && m.TotalValue.IsPositive() && m.TotalSupply > 0
}

// Encode serializes m into a memo.
func Encode(m Metadata) (ledger.Memo, error) {
	if m.Version == "" {
		m.Version = Version
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return ledger.Memo{}, err
	}
	return ledger.Memo{
		MemoType:   typeMarkerHex,
		MemoFormat: formatMarkerHex,
		MemoData:   hexEncode(payload),
	}, nil
}

// Decode returns the metadata carried by memo, or nil when the memo is not a
// well-formed tokenization record. A record needs a token symbol and an asset
// type; records without a value or supply decode but are not Valued. It never
// fails.
func Decode(memo ledger.Memo) *Metadata {
	typ, err := hex.DecodeString(memo.MemoType)
	if err != nil || string(typ) != TypeMarker {
		return nil
	}
	data, err := hex.DecodeString(memo.MemoData)
	if err != nil || len(data) == 0 {
		return nil
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	if m.TokenSymbol == "" || m.AssetType == "" {
		return nil
	}
	return &m
}

// DecodeRecord returns the first tokenization memo attached to rec.
func DecodeRecord(rec ledger.TxRecord) *Metadata {
	for _, memo := range rec.Memos {
		if m := Decode(memo); m != nil {
			return m
		}
	}
	return nil
}

// FindTokenizationRecord returns the metadata of the first record, in the
// order given, whose token symbol is currency.
func FindTokenizationRecord(records []ledger.TxRecord, currency string) *Metadata {
	for _, rec := range records {
		if m := tokenization(rec); m != nil && m.TokenSymbol == currency {
			return m
		}
	}
	return nil
}

// tokenization decodes rec as a tokenization record. Records that did not
// settle successfully, or that were sent by an account other than the issuer
// named inside the memo, yield nil.
func tokenization(rec ledger.TxRecord) *Metadata {
	if rec.Result != "" && rec.Result != string(ledger.TesSUCCESS) {
		return nil
	}
	m := DecodeRecord(rec)
	if m == nil {
		return nil
	}
	if m.Issuer != "" && rec.Account != "" && m.Issuer != rec.Account {
		return nil
	}
	return m
}

func hexEncode(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
