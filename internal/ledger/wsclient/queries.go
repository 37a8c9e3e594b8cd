package wsclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
)

const (
	codeAccountNotFound = "actNotFound"
	codeTxNotFound      = "txnNotFound"
)

// AccountInfo returns the validated AccountRoot of account.
func (c *Client) AccountInfo(ctx context.Context, account string) (*ledger.AccountInfo, error) {
	return c.accountInfo(ctx, account, "validated")
}

func (c *Client) accountInfo(ctx context.Context, account, ledgerIndex string) (*ledger.AccountInfo, error) {
	var res struct {
		AccountData struct {
			Account    string `json:"Account"`
			Balance    string `json:"Balance"`
			Sequence   uint32 `json:"Sequence"`
			OwnerCount uint32 `json:"OwnerCount"`
			Flags      uint32 `json:"Flags"`
		} `json:"account_data"`
		LedgerIndex        uint32 `json:"ledger_index"`
		LedgerCurrentIndex uint32 `json:"ledger_current_index"`
	}
	err := c.call(ctx, "account_info", map[string]any{
		"account":      account,
		"ledger_index": ledgerIndex,
		"strict":       true,
	}, &res)
	if isRPCCode(err, codeAccountNotFound) {
		return nil, &errs.AccountNotFoundError{Account: account}
	}
	if err != nil {
		return nil, err
	}

	drops, err := decimal.NewFromString(res.AccountData.Balance)
	if err != nil {
		return nil, fmt.Errorf("account_info: parse balance %q: %w", res.AccountData.Balance, err)
	}
	index := res.LedgerIndex
	if index == 0 {
		index = res.LedgerCurrentIndex
	}
	return &ledger.AccountInfo{
		Account:     res.AccountData.Account,
		Balance:     drops.Div(ledger.DropsPerXRP),
		Sequence:    res.AccountData.Sequence,
		OwnerCount:  res.AccountData.OwnerCount,
		Flags:       res.AccountData.Flags,
		LedgerIndex: index,
	}, nil
}

// AccountLines follows markers until every line has been read.
func (c *Client) AccountLines(ctx context.Context, account, peer string) ([]ledger.TrustLine, error) {
	var lines []ledger.TrustLine
	var marker any
	for {
		params := map[string]any{
			"account":      account,
			"ledger_index": "validated",
			"limit":        c.cfg.PageSize,
		}
		if peer != "" {
			params["peer"] = peer
		}
		if marker != nil {
			params["marker"] = marker
		}

		var res struct {
			Lines []struct {
				Account      string `json:"account"`
				Balance      string `json:"balance"`
				Currency     string `json:"currency"`
				Limit        string `json:"limit"`
				LimitPeer    string `json:"limit_peer"`
				QualityIn    uint32 `json:"quality_in"`
				QualityOut   uint32 `json:"quality_out"`
				NoRipple     bool   `json:"no_ripple"`
				NoRipplePeer bool   `json:"no_ripple_peer"`
				Freeze       bool   `json:"freeze"`
				FreezePeer   bool   `json:"freeze_peer"`
			} `json:"lines"`
			Marker any `json:"marker"`
		}
		err := c.call(ctx, "account_lines", params, &res)
		if isRPCCode(err, codeAccountNotFound) {
			return nil, &errs.AccountNotFoundError{Account: account}
		}
		if err != nil {
			return nil, err
		}

		for _, l := range res.Lines {
			line := ledger.TrustLine{
				Account:      l.Account,
				Currency:     l.Currency,
				QualityIn:    l.QualityIn,
				QualityOut:   l.QualityOut,
				NoRipple:     l.NoRipple,
				NoRipplePeer: l.NoRipplePeer,
				Freeze:       l.Freeze,
				FreezePeer:   l.FreezePeer,
			}
			if line.Balance, err = parseValue(l.Balance); err != nil {
				return nil, fmt.Errorf("account_lines: balance: %w", err)
			}
			if line.Limit, err = parseValue(l.Limit); err != nil {
				return nil, fmt.Errorf("account_lines: limit: %w", err)
			}
			if line.LimitPeer, err = parseValue(l.LimitPeer); err != nil {
				return nil, fmt.Errorf("account_lines: limit_peer: %w", err)
			}
			lines = append(lines, line)
		}

		if res.Marker == nil {
			return lines, nil
		}
		marker = res.Marker
	}
}

// AccountTransactions returns one page of account's history, newest first.
func (c *Client) AccountTransactions(ctx context.Context, account string, limit int, marker any) (*ledger.HistoryPage, error) {
	if limit <= 0 || limit > c.cfg.PageSize {
		limit = c.cfg.PageSize
	}
	params := map[string]any{
		"account":          account,
		"ledger_index_min": -1,
		"ledger_index_max": -1,
		"forward":          false,
		"limit":            limit,
	}
	if marker != nil {
		params["marker"] = marker
	}

	var res struct {
		Transactions []accountTxEntry `json:"transactions"`
		Marker       any              `json:"marker"`
	}
	err := c.call(ctx, "account_tx", params, &res)
	if isRPCCode(err, codeAccountNotFound) {
		return nil, &errs.AccountNotFoundError{Account: account}
	}
	if err != nil {
		return nil, err
	}

	page := &ledger.HistoryPage{Records: make([]ledger.TxRecord, 0, len(res.Transactions))}
	for _, entry := range res.Transactions {
		rec, err := entry.record()
		if err != nil {
			return nil, fmt.Errorf("account_tx: %w", err)
		}
		page.Records = append(page.Records, rec)
	}
	if len(res.Transactions) > 0 {
		page.Marker = res.Marker
	}
	return page, nil
}

type accountTxEntry struct {
	Tx          json.RawMessage `json:"tx"`
	TxJSON      json.RawMessage `json:"tx_json"`
	Meta        json.RawMessage `json:"meta"`
	Hash        string          `json:"hash"`
	LedgerIndex uint32          `json:"ledger_index"`
	Validated   bool            `json:"validated"`
}

type txFields struct {
	Hash            string `json:"hash"`
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Destination     string `json:"Destination"`
	LedgerIndex     uint32 `json:"ledger_index"`
	Memos           []struct {
		Memo ledger.Memo `json:"Memo"`
	} `json:"Memos"`
}

type metaFields struct {
	TransactionResult string          `json:"TransactionResult"`
	DeliveredAmount   json.RawMessage `json:"delivered_amount"`
}

func (e accountTxEntry) record() (ledger.TxRecord, error) {
	raw := e.Tx
	if len(raw) == 0 {
		raw = e.TxJSON
	}
	var tx txFields
	if err := json.Unmarshal(raw, &tx); err != nil {
		return ledger.TxRecord{}, fmt.Errorf("decode transaction: %w", err)
	}
	var meta metaFields
	if len(e.Meta) > 0 && e.Meta[0] == '{' {
		if err := json.Unmarshal(e.Meta, &meta); err != nil {
			return ledger.TxRecord{}, fmt.Errorf("decode meta: %w", err)
		}
	}

	rec := ledger.TxRecord{
		Hash:            firstNonEmpty(e.Hash, tx.Hash),
		TransactionType: tx.TransactionType,
		Account:         tx.Account,
		Destination:     tx.Destination,
		Result:          meta.TransactionResult,
		LedgerIndex:     e.LedgerIndex,
		Validated:       e.Validated,
	}
	if rec.LedgerIndex == 0 {
		rec.LedgerIndex = tx.LedgerIndex
	}
	for _, m := range tx.Memos {
		rec.Memos = append(rec.Memos, m.Memo)
	}
	return rec, nil
}

// AMMInfo returns nil, nil when the pair has no pool.
func (c *Client) AMMInfo(ctx context.Context, asset1, asset2 amm.Asset) (*ledger.PoolState, error) {
	var res struct {
		AMM struct {
			Account     string          `json:"account"`
			Amount      json.RawMessage `json:"amount"`
			Amount2     json.RawMessage `json:"amount2"`
			LPToken     json.RawMessage `json:"lp_token"`
			TradingFee  uint16          `json:"trading_fee"`
			AuctionSlot *struct {
				Account string          `json:"account"`
				Price   json.RawMessage `json:"price"`
			} `json:"auction_slot"`
		} `json:"amm"`
	}
	err := c.call(ctx, "amm_info", map[string]any{
		"asset":        ledger.IssueWire(asset1),
		"asset2":       ledger.IssueWire(asset2),
		"ledger_index": "validated",
	}, &res)
	if isRPCCode(err, codeAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pool := &ledger.PoolState{
		Account:    res.AMM.Account,
		TradingFee: res.AMM.TradingFee,
	}
	if pool.Amount1, err = ledger.ParseAmount(res.AMM.Amount); err != nil {
		return nil, fmt.Errorf("amm_info: amount: %w", err)
	}
	if pool.Amount2, err = ledger.ParseAmount(res.AMM.Amount2); err != nil {
		return nil, fmt.Errorf("amm_info: amount2: %w", err)
	}
	if pool.LPToken, err = ledger.ParseAmount(res.AMM.LPToken); err != nil {
		return nil, fmt.Errorf("amm_info: lp_token: %w", err)
	}
	if slot := res.AMM.AuctionSlot; slot != nil {
		pool.AuctionOwner = slot.Account
		if len(slot.Price) > 0 {
			price, err := ledger.ParseAmount(slot.Price)
			if err != nil {
				return nil, fmt.Errorf("amm_info: auction price: %w", err)
			}
			pool.AuctionPrice = price.Value
		}
	}
	return pool, nil
}

// GatewayBalances returns the issuer's obligations by currency.
func (c *Client) GatewayBalances(ctx context.Context, issuer string) (map[string]decimal.Decimal, error) {
	var res struct {
		Obligations map[string]string `json:"obligations"`
	}
	err := c.call(ctx, "gateway_balances", map[string]any{
		"account":      issuer,
		"strict":       true,
		"ledger_index": "validated",
	}, &res)
	if isRPCCode(err, codeAccountNotFound) {
		return nil, &errs.AccountNotFoundError{Account: issuer}
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(res.Obligations))
	for currency, value := range res.Obligations {
		v, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("gateway_balances: %s: %w", currency, err)
		}
		out[currency] = v
	}
	return out, nil
}

// ServerReserves reads the reserve requirements of the last validated ledger.
func (c *Client) ServerReserves(ctx context.Context) (*ledger.Reserves, error) {
	var res struct {
		Info struct {
			ValidatedLedger *struct {
				ReserveBaseXRP decimal.Decimal `json:"reserve_base_xrp"`
				ReserveIncXRP  decimal.Decimal `json:"reserve_inc_xrp"`
				Seq            uint32          `json:"seq"`
			} `json:"validated_ledger"`
		} `json:"info"`
	}
	if err := c.call(ctx, "server_info", nil, &res); err != nil {
		return nil, err
	}
	vl := res.Info.ValidatedLedger
	if vl == nil {
		return nil, fmt.Errorf("server_info: no validated ledger")
	}
	return &ledger.Reserves{Base: vl.ReserveBaseXRP, Increment: vl.ReserveIncXRP}, nil
}

// validatedLedgerIndex returns the most recent validated ledger index.
func (c *Client) validatedLedgerIndex(ctx context.Context) (uint32, error) {
	var res struct {
		LedgerIndex uint32 `json:"ledger_index"`
	}
	if err := c.call(ctx, "ledger", map[string]any{"ledger_index": "validated"}, &res); err != nil {
		return 0, err
	}
	return res.LedgerIndex, nil
}

func parseValue(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
