package ledger

import (
	"github.com/LeJamon/rwaxrpl/internal/amm"
)

// Transaction is a flattened transaction in the ledger's JSON form.
type Transaction map[string]any

// Type returns the TransactionType field.
func (t Transaction) Type() string {
	s, _ := t["TransactionType"].(string)
	return s
}

// WithMemos attaches memos to the transaction.
func (t Transaction) WithMemos(memos ...Memo) Transaction {
	if len(memos) == 0 {
		return t
	}
	wrapped := make([]any, 0, len(memos))
	for _, m := range memos {
		entry := map[string]any{}
		if m.MemoType != "" {
			entry["MemoType"] = m.MemoType
		}
		if m.MemoFormat != "" {
			entry["MemoFormat"] = m.MemoFormat
		}
		if m.MemoData != "" {
			entry["MemoData"] = m.MemoData
		}
		wrapped = append(wrapped, map[string]any{"Memo": entry})
	}
	t["Memos"] = wrapped
	return t
}

// WithFlags ORs flags into the transaction.
func (t Transaction) WithFlags(flags uint32) Transaction {
	cur, _ := t["Flags"].(uint32)
	t["Flags"] = cur | flags
	return t
}

// AccountSet builds an AccountSet enabling setFlag (0 for none).
func AccountSet(account string, setFlag uint32) Transaction {
	tx := Transaction{"TransactionType": "AccountSet", "Account": account}
	if setFlag != 0 {
		tx["SetFlag"] = setFlag
	}
	return tx
}

// TrustSet builds a TrustSet for limit.
func TrustSet(account string, limit Amount) Transaction {
	return Transaction{
		"TransactionType": "TrustSet",
		"Account":         account,
		"LimitAmount":     limit.Wire(),
	}
}

// Payment builds a direct payment.
func Payment(account, destination string, amount Amount) Transaction {
	return Transaction{
		"TransactionType": "Payment",
		"Account":         account,
		"Destination":     destination,
		"Amount":          amount.Wire(),
	}
}

// CrossCurrencyPayment builds a partial payment that spends at most sendMax
// and fails unless deliverMin is delivered. paths may be nil.
func CrossCurrencyPayment(account, destination string, deliver, sendMax, deliverMin Amount, paths [][]map[string]any) Transaction {
	tx := Transaction{
		"TransactionType": "Payment",
		"Account":         account,
		"Destination":     destination,
		"Amount":          deliver.Wire(),
		"SendMax":         sendMax.Wire(),
		"DeliverMin":      deliverMin.Wire(),
		"Flags":           TfPartialPayment,
	}
	if len(paths) > 0 {
		tx["Paths"] = paths
	}
	return tx
}

// AMMCreate builds an AMMCreate.
func AMMCreate(account string, amount, amount2 Amount, tradingFee uint16) Transaction {
	return Transaction{
		"TransactionType": "AMMCreate",
		"Account":         account,
		"Amount":          amount.Wire(),
		"Amount2":         amount2.Wire(),
		"TradingFee":      tradingFee,
	}
}

// AMMDeposit builds an AMMDeposit. Nil amounts are omitted.
func AMMDeposit(account string, asset, asset2 amm.Asset, amount, amount2 *Amount, flags uint32) Transaction {
	tx := Transaction{
		"TransactionType": "AMMDeposit",
		"Account":         account,
		"Asset":           IssueWire(asset),
		"Asset2":          IssueWire(asset2),
		"Flags":           flags,
	}
	if amount != nil {
		tx["Amount"] = amount.Wire()
	}
	if amount2 != nil {
		tx["Amount2"] = amount2.Wire()
	}
	return tx
}

// AMMWithdraw builds an AMMWithdraw. Nil amounts are omitted.
func AMMWithdraw(account string, asset, asset2 amm.Asset, amount, amount2, lpTokenIn *Amount, flags uint32) Transaction {
	tx := Transaction{
		"TransactionType": "AMMWithdraw",
		"Account":         account,
		"Asset":           IssueWire(asset),
		"Asset2":          IssueWire(asset2),
		"Flags":           flags,
	}
	if amount != nil {
		tx["Amount"] = amount.Wire()
	}
	if amount2 != nil {
		tx["Amount2"] = amount2.Wire()
	}
	if lpTokenIn != nil {
		tx["LPTokenIn"] = lpTokenIn.Wire()
	}
	return tx
}

// AMMBid builds an AMMBid for the auction slot.
func AMMBid(account string, asset, asset2 amm.Asset, bidMin, bidMax *Amount) Transaction {
	tx := Transaction{
		"TransactionType": "AMMBid",
		"Account":         account,
		"Asset":           IssueWire(asset),
		"Asset2":          IssueWire(asset2),
	}
	if bidMin != nil {
		tx["BidMin"] = bidMin.Wire()
	}
	if bidMax != nil {
		tx["BidMax"] = bidMax.Wire()
	}
	return tx
}
