package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/amm"
)

// AccountInfo is the subset of an AccountRoot used by the orchestrators.
type AccountInfo struct {
	Account     string          `json:"account"`
	Balance     decimal.Decimal `json:"balance"`
	Sequence    uint32          `json:"sequence"`
	OwnerCount  uint32          `json:"ownerCount"`
	Flags       uint32          `json:"flags"`
	LedgerIndex uint32          `json:"ledgerIndex,omitempty"`
}

// DefaultRipple reports whether the account has lsfDefaultRipple set.
func (a *AccountInfo) DefaultRipple() bool {
	return a.Flags&LsfDefaultRipple != 0
}

// TrustLine is one holding as seen from the queried account. Balance is
// signed from that account's perspective.
type TrustLine struct {
	Account      string          `json:"account"`
	Currency     string          `json:"currency"`
	Balance      decimal.Decimal `json:"balance"`
	Limit        decimal.Decimal `json:"limit"`
	LimitPeer    decimal.Decimal `json:"limitPeer"`
	QualityIn    uint32          `json:"qualityIn"`
	QualityOut   uint32          `json:"qualityOut"`
	Freeze       bool            `json:"freeze"`
	FreezePeer   bool            `json:"freezePeer"`
	NoRipple     bool            `json:"noRipple"`
	NoRipplePeer bool            `json:"noRipplePeer"`
}

// Frozen reports whether either side has frozen the line.
func (t TrustLine) Frozen() bool {
	return t.Freeze || t.FreezePeer
}

// Memo is an attached-data entry; all fields are hex encoded.
type Memo struct {
	MemoType   string `json:"MemoType,omitempty"`
	MemoFormat string `json:"MemoFormat,omitempty"`
	MemoData   string `json:"MemoData,omitempty"`
}

// TxRecord is one entry of an account's transaction history.
type TxRecord struct {
	Hash            string `json:"hash"`
	TransactionType string `json:"transactionType"`
	Account         string `json:"account"`
	Destination     string `json:"destination,omitempty"`
	Result          string `json:"result"`
	LedgerIndex     uint32 `json:"ledgerIndex"`
	Validated       bool   `json:"validated"`
	Memos           []Memo `json:"memos,omitempty"`
}

// HistoryPage is one page of an account's history, newest first.
type HistoryPage struct {
	Records []TxRecord
	// Marker resumes after this page. It is nil on the last page.
	Marker any
}

// PoolState is the live state of an AMM instance.
type PoolState struct {
	Account      string          `json:"account"`
	Amount1      Amount          `json:"amount1"`
	Amount2      Amount          `json:"amount2"`
	LPToken      Amount          `json:"lpToken"`
	TradingFee   uint16          `json:"tradingFee"`
	AuctionPrice decimal.Decimal `json:"auctionPrice"`
	AuctionOwner string          `json:"auctionOwner,omitempty"`
}

// Reserve returns the pool balance of the given side.
func (p *PoolState) Reserve(asset amm.Asset) (decimal.Decimal, bool) {
	switch {
	case p.Amount1.Asset() == asset:
		return p.Amount1.Value, true
	case p.Amount2.Asset() == asset:
		return p.Amount2.Value, true
	}
	return decimal.Zero, false
}

// Reserves are the live network reserve requirements in XRP.
type Reserves struct {
	Base      decimal.Decimal `json:"base"`
	Increment decimal.Decimal `json:"increment"`
}

// SubmitResult is the terminal outcome of a submitted transaction.
type SubmitResult struct {
	Hash            string         `json:"hash"`
	Code            string         `json:"code"`
	LedgerIndex     uint32         `json:"ledgerIndex"`
	Validated       bool           `json:"validated"`
	DeliveredAmount *Amount        `json:"deliveredAmount,omitempty"`
	Meta            map[string]any `json:"-"`
}

// Succeeded reports whether the transaction settled with tesSUCCESS.
func (r *SubmitResult) Succeeded() bool {
	return r != nil && r.Code == string(TesSUCCESS)
}

// AccountRoot flags
const (
	LsfDefaultRipple uint32 = 0x00800000
)

// AccountSet flags
const (
	AsfDefaultRipple uint32 = 8
)

// Payment flags
const (
	TfPartialPayment uint32 = 0x00020000
)
