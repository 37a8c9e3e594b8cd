// Package ledgertest provides an in-memory ledger for orchestrator tests. It
// applies the subset of transaction semantics the orchestrators rely on.
package ledgertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
)

type lineKey struct {
	Holder   string
	Issuer   string
	Currency string
}

type line struct {
	Balance decimal.Decimal
	Limit   decimal.Decimal
	Frozen  bool
}

type account struct {
	Balance    decimal.Decimal
	Sequence   uint32
	OwnerCount uint32
	Flags      uint32
}

type pool struct {
	state  ledger.PoolState
	assets [2]amm.Asset
}

// Ledger is a fake ledger.Ledger and ledger.Dialer. The zero value is not
// usable; call New.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*account
	lines    map[lineKey]*line
	pools    []*pool
	history  map[string][]ledger.TxRecord
	reserves ledger.Reserves

	queued    map[string][]string
	failures  map[string]error
	submitted []ledger.Transaction

	ledgerIndex uint32
	txCount     int
	dials       int
	closes      int
	calls       map[string]int
}

var (
	_ ledger.Ledger = (*Ledger)(nil)
	_ ledger.Dialer = (*Ledger)(nil)
)

// New returns an empty ledger with 1 XRP base and 0.2 XRP owner reserves.
func New() *Ledger {
	return &Ledger{
		accounts:    map[string]*account{},
		lines:       map[lineKey]*line{},
		history:     map[string][]ledger.TxRecord{},
		reserves:    ledger.Reserves{Base: decimal.NewFromInt(1), Increment: decimal.RequireFromString("0.2")},
		queued:      map[string][]string{},
		failures:    map[string]error{},
		calls:       map[string]int{},
		ledgerIndex: 1000,
	}
}

// Fund creates or tops up an account.
func (l *Ledger) Fund(address string, xrp decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := l.ensure(address)
	a.Balance = a.Balance.Add(xrp)
}

// SetReserves overrides the network reserves.
func (l *Ledger) SetReserves(base, increment decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reserves = ledger.Reserves{Base: base, Increment: increment}
}

// SetLine sets holder's balance of currency issued by issuer.
func (l *Ledger) SetLine(holder, issuer, currency string, balance, limit decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensure(holder)
	l.ensure(issuer)
	l.lines[lineKey{holder, issuer, currency}] = &line{Balance: balance, Limit: limit}
}

// AddHistory prepends rec to account's history.
func (l *Ledger) AddHistory(address string, rec ledger.TxRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history[address] = append([]ledger.TxRecord{rec}, l.history[address]...)
}

// AddPool seeds an AMM pool and returns its state.
func (l *Ledger) AddPool(amount1, amount2 ledger.Amount, lpTokens decimal.Decimal, fee uint16) *ledger.PoolState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &l.addPool(amount1, amount2, lpTokens, fee).state
}

// QueueResult makes the next submission of txType settle with code and
// change nothing.
func (l *Ledger) QueueResult(txType, code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queued[txType] = append(l.queued[txType], code)
}

// FailMethod makes every call to method return err. A nil err clears it.
func (l *Ledger) FailMethod(method string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.failures, method)
		return
	}
	l.failures[method] = err
}

// Submitted returns every transaction passed to SubmitAndWait.
func (l *Ledger) Submitted() []ledger.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ledger.Transaction(nil), l.submitted...)
}

// SubmittedTypes returns the TransactionType of every submission in order.
func (l *Ledger) SubmittedTypes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.submitted))
	for _, tx := range l.submitted {
		out = append(out, tx.Type())
	}
	return out
}

// Calls returns how many times method was invoked.
func (l *Ledger) Calls(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[method]
}

// OpenConnections is dials minus closes.
func (l *Ledger) OpenConnections() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dials - l.closes
}

// Balance returns holder's balance of asset.
func (l *Ledger) Balance(holder string, asset amm.Asset) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if asset.IsBase() {
		if a, ok := l.accounts[holder]; ok {
			return a.Balance
		}
		return decimal.Zero
	}
	if ln, ok := l.lines[lineKey{holder, asset.Issuer, asset.Currency}]; ok {
		return ln.Balance
	}
	return decimal.Zero
}

// Pool returns a copy of the pool state for the pair, or nil.
func (l *Ledger) Pool(a, b amm.Asset) *ledger.PoolState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.findPool(a, b); p != nil {
		s := p.state
		return &s
	}
	return nil
}

// Dial implements ledger.Dialer.
func (l *Ledger) Dial(ctx context.Context) (ledger.Ledger, error) {
	if err := l.enter("Dial"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.dials++
	l.mu.Unlock()
	return l, nil
}

// Close implements ledger.Ledger.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closes++
	return nil
}

func (l *Ledger) enter(method string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[method]++
	return l.failures[method]
}

// AccountInfo implements ledger.Ledger.
func (l *Ledger) AccountInfo(ctx context.Context, address string) (*ledger.AccountInfo, error) {
	if err := l.enter("AccountInfo"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[address]
	if !ok {
		return nil, &errs.AccountNotFoundError{Account: address}
	}
	return &ledger.AccountInfo{
		Account:     address,
		Balance:     a.Balance,
		Sequence:    a.Sequence,
		OwnerCount:  a.OwnerCount,
		Flags:       a.Flags,
		LedgerIndex: l.ledgerIndex,
	}, nil
}

// AccountLines implements ledger.Ledger. Lines are reported from address's
// side: holders see positive balances, issuers see negative ones.
func (l *Ledger) AccountLines(ctx context.Context, address, peer string) ([]ledger.TrustLine, error) {
	if err := l.enter("AccountLines"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[address]; !ok {
		return nil, &errs.AccountNotFoundError{Account: address}
	}

	var out []ledger.TrustLine
	for k, ln := range l.lines {
		switch {
		case k.Holder == address && (peer == "" || peer == k.Issuer):
			out = append(out, ledger.TrustLine{
				Account: k.Issuer, Currency: k.Currency, Balance: ln.Balance,
				Limit: ln.Limit, Freeze: ln.Frozen,
			})
		case k.Issuer == address && (peer == "" || peer == k.Holder):
			out = append(out, ledger.TrustLine{
				Account: k.Holder, Currency: k.Currency, Balance: ln.Balance.Neg(),
				LimitPeer: ln.Limit, FreezePeer: ln.Frozen,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account != out[j].Account {
			return out[i].Account < out[j].Account
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}

// AccountTransactions implements ledger.Ledger. Markers are offsets into
// the history.
func (l *Ledger) AccountTransactions(ctx context.Context, address string, limit int, marker any) (*ledger.HistoryPage, error) {
	if err := l.enter("AccountTransactions"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[address]; !ok {
		return nil, &errs.AccountNotFoundError{Account: address}
	}
	if limit <= 0 || limit > ledger.MaxPageSize {
		limit = ledger.MaxPageSize
	}
	start := 0
	if marker != nil {
		offset, ok := marker.(int)
		if !ok {
			return nil, fmt.Errorf("bad marker %v", marker)
		}
		start = offset
	}
	recs := l.history[address]
	start = min(start, len(recs))
	end := min(start+limit, len(recs))

	page := &ledger.HistoryPage{Records: append([]ledger.TxRecord(nil), recs[start:end]...)}
	if end < len(recs) {
		page.Marker = end
	}
	return page, nil
}

// AMMInfo implements ledger.Ledger.
func (l *Ledger) AMMInfo(ctx context.Context, a, b amm.Asset) (*ledger.PoolState, error) {
	if err := l.enter("AMMInfo"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.findPool(a, b)
	if p == nil {
		return nil, nil
	}
	s := p.state
	return &s, nil
}

// GatewayBalances implements ledger.Ledger.
func (l *Ledger) GatewayBalances(ctx context.Context, issuer string) (map[string]decimal.Decimal, error) {
	if err := l.enter("GatewayBalances"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[issuer]; !ok {
		return nil, &errs.AccountNotFoundError{Account: issuer}
	}
	out := map[string]decimal.Decimal{}
	for k, ln := range l.lines {
		if k.Issuer == issuer && ln.Balance.IsPositive() {
			out[k.Currency] = out[k.Currency].Add(ln.Balance)
		}
	}
	return out, nil
}

// ServerReserves implements ledger.Ledger.
func (l *Ledger) ServerReserves(ctx context.Context) (*ledger.Reserves, error) {
	if err := l.enter("ServerReserves"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.reserves
	return &r, nil
}

// SubmitAndWait implements ledger.Ledger. Every submission settles in its
// own validated ledger.
func (l *Ledger) SubmitAndWait(ctx context.Context, tx ledger.Transaction, signer ledger.Signer) (*ledger.SubmitResult, error) {
	if err := l.enter("SubmitAndWait"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sender := signer.Address()
	if a, _ := tx["Account"].(string); a != sender {
		return nil, fmt.Errorf("transaction account %q does not match signer %q", a, sender)
	}
	copied := ledger.Transaction{}
	for k, v := range tx {
		copied[k] = v
	}
	l.submitted = append(l.submitted, copied)

	acct, ok := l.accounts[sender]
	if !ok {
		return &ledger.SubmitResult{Code: string(ledger.TerNO_ACCOUNT)}, nil
	}

	l.txCount++
	l.ledgerIndex++
	res := &ledger.SubmitResult{
		Hash:        fmt.Sprintf("%064X", l.txCount),
		LedgerIndex: l.ledgerIndex,
		Validated:   true,
	}

	if q := l.queued[tx.Type()]; len(q) > 0 {
		res.Code = q[0]
		l.queued[tx.Type()] = q[1:]
	} else {
		code, delivered := l.apply(sender, tx)
		res.Code = code
		res.DeliveredAmount = delivered
	}
	acct.Sequence++

	rec := ledger.TxRecord{
		Hash:            res.Hash,
		TransactionType: tx.Type(),
		Account:         sender,
		Result:          res.Code,
		LedgerIndex:     res.LedgerIndex,
		Validated:       true,
		Memos:           memosOf(tx),
	}
	if dest, _ := tx["Destination"].(string); dest != "" {
		rec.Destination = dest
		if dest != sender {
			l.history[dest] = append([]ledger.TxRecord{rec}, l.history[dest]...)
		}
	}
	l.history[sender] = append([]ledger.TxRecord{rec}, l.history[sender]...)
	return res, nil
}

func (l *Ledger) ensure(address string) *account {
	a, ok := l.accounts[address]
	if !ok {
		a = &account{Sequence: 1}
		l.accounts[address] = a
	}
	return a
}

func (l *Ledger) findPool(a, b amm.Asset) *pool {
	for _, p := range l.pools {
		if (p.assets[0] == a && p.assets[1] == b) || (p.assets[0] == b && p.assets[1] == a) {
			return p
		}
	}
	return nil
}

func (l *Ledger) addPool(amount1, amount2 ledger.Amount, lpTokens decimal.Decimal, fee uint16) *pool {
	n := len(l.pools) + 1
	poolAccount := fmt.Sprintf("rAMMPool%04d", n)
	l.ensure(poolAccount)
	p := &pool{
		state: ledger.PoolState{
			Account:    poolAccount,
			Amount1:    amount1,
			Amount2:    amount2,
			LPToken:    ledger.Issued(fmt.Sprintf("03%038X", n), poolAccount, lpTokens),
			TradingFee: fee,
		},
		assets: [2]amm.Asset{amount1.Asset(), amount2.Asset()},
	}
	l.pools = append(l.pools, p)
	return p
}

func memosOf(tx ledger.Transaction) []ledger.Memo {
	raw, ok := tx["Memos"].([]any)
	if !ok {
		return nil
	}
	var out []ledger.Memo
	for _, entry := range raw {
		wrapper, _ := entry.(map[string]any)
		fields, _ := wrapper["Memo"].(map[string]any)
		m := ledger.Memo{}
		m.MemoType, _ = fields["MemoType"].(string)
		m.MemoFormat, _ = fields["MemoFormat"].(string)
		m.MemoData, _ = fields["MemoData"].(string)
		out = append(out, m)
	}
	return out
}

// wireAmount decodes an amount from its wire form.
func wireAmount(v any) (ledger.Amount, bool) {
	if v == nil {
		return ledger.Amount{}, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ledger.Amount{}, false
	}
	a, err := ledger.ParseAmount(raw)
	return a, err == nil
}

func wireAsset(v any) amm.Asset {
	m, _ := v.(map[string]any)
	cur, _ := m["currency"].(string)
	iss, _ := m["issuer"].(string)
	if iss == "" {
		return amm.Asset{Currency: amm.BaseCurrency}
	}
	return amm.Asset{Currency: cur, Issuer: iss}
}

func flagsOf(tx ledger.Transaction) uint32 {
	f, _ := tx["Flags"].(uint32)
	return f
}
