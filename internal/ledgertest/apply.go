package ledgertest

import (
	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/amm"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
)

// apply runs tx against the state and returns its settlement code. Failed
// transactions change nothing. Callers hold l.mu.
func (l *Ledger) apply(sender string, tx ledger.Transaction) (string, *ledger.Amount) {
	switch tx.Type() {
	case "AccountSet":
		if f, _ := tx["SetFlag"].(uint32); f == ledger.AsfDefaultRipple {
			l.accounts[sender].Flags |= ledger.LsfDefaultRipple
		}
		return string(ledger.TesSUCCESS), nil
	case "TrustSet":
		return l.applyTrustSet(sender, tx), nil
	case "Payment":
		if _, ok := tx["SendMax"]; ok {
			return l.applySwap(sender, tx)
		}
		return l.applyPayment(sender, tx)
	case "AMMCreate":
		return l.applyAMMCreate(sender, tx), nil
	case "AMMDeposit":
		return l.applyAMMDeposit(sender, tx), nil
	case "AMMWithdraw":
		return l.applyAMMWithdraw(sender, tx), nil
	case "AMMBid":
		return l.applyAMMBid(sender, tx), nil
	}
	return string(ledger.TemDISABLED), nil
}

func (l *Ledger) applyTrustSet(sender string, tx ledger.Transaction) string {
	limit, ok := wireAmount(tx["LimitAmount"])
	if !ok || limit.IsNative() {
		return string(ledger.TemBAD_CURRENCY)
	}
	if limit.Issuer == sender {
		return string(ledger.TemDST_IS_SRC)
	}
	if _, ok := l.accounts[limit.Issuer]; !ok {
		return string(ledger.TecNO_DST)
	}
	k := lineKey{sender, limit.Issuer, limit.Currency}
	if ln, ok := l.lines[k]; ok {
		ln.Limit = limit.Value
		return string(ledger.TesSUCCESS)
	}
	l.lines[k] = &line{Limit: limit.Value}
	l.accounts[sender].OwnerCount++
	return string(ledger.TesSUCCESS)
}

func (l *Ledger) applyPayment(sender string, tx ledger.Transaction) (string, *ledger.Amount) {
	amount, ok := wireAmount(tx["Amount"])
	if !ok || !amount.Value.IsPositive() {
		return string(ledger.TemBAD_AMOUNT), nil
	}
	dest, _ := tx["Destination"].(string)
	if dest == sender {
		return string(ledger.TemDST_IS_SRC), nil
	}
	if _, ok := l.accounts[dest]; !ok {
		return string(ledger.TecNO_DST), nil
	}
	if code := l.debit(sender, amount); code != "" {
		return code, nil
	}
	if code := l.credit(dest, amount); code != "" {
		l.credit(sender, amount)
		return code, nil
	}
	return string(ledger.TesSUCCESS), &amount
}

// debit removes amount from holder. Issuers have unlimited supply of their
// own currency.
func (l *Ledger) debit(holder string, amount ledger.Amount) string {
	if amount.IsNative() {
		a := l.accounts[holder]
		if a.Balance.LessThan(amount.Value) {
			return string(ledger.TecUNFUNDED_PAYMENT)
		}
		a.Balance = a.Balance.Sub(amount.Value)
		return ""
	}
	if holder == amount.Issuer {
		return ""
	}
	ln, ok := l.lines[lineKey{holder, amount.Issuer, amount.Currency}]
	if !ok || ln.Balance.LessThan(amount.Value) {
		return string(ledger.TecUNFUNDED_PAYMENT)
	}
	ln.Balance = ln.Balance.Sub(amount.Value)
	return ""
}

// credit adds amount to holder, which needs a trust line for issued
// currencies unless it is the issuer or an AMM.
func (l *Ledger) credit(holder string, amount ledger.Amount) string {
	if amount.IsNative() {
		a := l.ensure(holder)
		a.Balance = a.Balance.Add(amount.Value)
		return ""
	}
	if holder == amount.Issuer {
		return ""
	}
	k := lineKey{holder, amount.Issuer, amount.Currency}
	ln, ok := l.lines[k]
	if !ok {
		if !l.isPoolAccount(holder) && !l.isPoolAccount(amount.Issuer) {
			return string(ledger.TecNO_LINE)
		}
		ln = &line{}
		l.lines[k] = ln
	}
	next := ln.Balance.Add(amount.Value)
	if ln.Limit.IsPositive() && next.GreaterThan(ln.Limit) {
		return string(ledger.TecPATH_PARTIAL)
	}
	ln.Balance = next
	return ""
}

func (l *Ledger) isPoolAccount(address string) bool {
	for _, p := range l.pools {
		if p.state.Account == address {
			return true
		}
	}
	return false
}

// applySwap settles a partial payment through AMM pools, routing issued to
// issued through the XRP pools.
func (l *Ledger) applySwap(sender string, tx ledger.Transaction) (string, *ledger.Amount) {
	deliver, ok1 := wireAmount(tx["Amount"])
	sendMax, ok2 := wireAmount(tx["SendMax"])
	if !ok1 || !ok2 {
		return string(ledger.TemBAD_AMOUNT), nil
	}
	deliverMin := deliver
	if dm, ok := wireAmount(tx["DeliverMin"]); ok {
		deliverMin = dm
	}

	from, to := sendMax.Asset(), deliver.Asset()
	var hops []amm.Asset
	if p := l.findPool(from, to); p != nil {
		hops = []amm.Asset{from, to}
	} else if !from.IsBase() && !to.IsBase() {
		hops = []amm.Asset{from, {Currency: amm.BaseCurrency}, to}
	} else {
		return string(ledger.TecPATH_DRY), nil
	}

	// Price the full SendMax through every hop.
	out := sendMax.Value
	for i := 0; i+1 < len(hops); i++ {
		p := l.findPool(hops[i], hops[i+1])
		if p == nil {
			return string(ledger.TecPATH_DRY), nil
		}
		in, _ := p.state.Reserve(hops[i])
		res, _ := p.state.Reserve(hops[i+1])
		out = amm.SwapIn(out, in, res, p.state.TradingFee)
	}
	spent := sendMax.Value
	if len(hops) == 2 && out.GreaterThan(deliver.Value) {
		p := l.findPool(from, to)
		in, _ := p.state.Reserve(from)
		res, _ := p.state.Reserve(to)
		need, err := amm.SwapOut(deliver.Value, in, res, p.state.TradingFee)
		if err == nil && need.LessThan(spent) {
			spent = need
		}
		out = deliver.Value
	}
	out = decimal.Min(out, deliver.Value)
	if out.LessThan(deliverMin.Value) {
		return string(ledger.TecPATH_PARTIAL), nil
	}

	if code := l.debit(sender, ledger.Amount{Currency: sendMax.Currency, Issuer: sendMax.Issuer, Value: spent}); code != "" {
		return code, nil
	}

	// Move reserves hop by hop with the realized amounts.
	amountIn := spent
	for i := 0; i+1 < len(hops); i++ {
		p := l.findPool(hops[i], hops[i+1])
		in, _ := p.state.Reserve(hops[i])
		res, _ := p.state.Reserve(hops[i+1])
		hopOut := amm.SwapIn(amountIn, in, res, p.state.TradingFee)
		if i == len(hops)-2 {
			hopOut = out
		}
		p.adjust(hops[i], amountIn)
		p.adjust(hops[i+1], hopOut.Neg())
		amountIn = hopOut
	}

	delivered := ledger.Amount{Currency: deliver.Currency, Issuer: deliver.Issuer, Value: out}
	if delivered.IsNative() {
		delivered = ledger.XRP(out.Truncate(6))
	}
	if code := l.credit(sender, delivered); code != "" {
		return code, nil
	}
	return string(ledger.TesSUCCESS), &delivered
}

func (p *pool) adjust(asset amm.Asset, delta decimal.Decimal) {
	switch {
	case p.state.Amount1.Asset() == asset:
		p.state.Amount1.Value = p.state.Amount1.Value.Add(delta)
	case p.state.Amount2.Asset() == asset:
		p.state.Amount2.Value = p.state.Amount2.Value.Add(delta)
	}
}

func (l *Ledger) lpLine(holder string, p *pool) *line {
	k := lineKey{holder, p.state.Account, p.state.LPToken.Currency}
	ln, ok := l.lines[k]
	if !ok {
		ln = &line{}
		l.lines[k] = ln
	}
	return ln
}

func (l *Ledger) applyAMMCreate(sender string, tx ledger.Transaction) string {
	a1, ok1 := wireAmount(tx["Amount"])
	a2, ok2 := wireAmount(tx["Amount2"])
	if !ok1 || !ok2 || !a1.Value.IsPositive() || !a2.Value.IsPositive() {
		return string(ledger.TemBAD_AMOUNT)
	}
	if amm.ValidateAssetPair(a1.Asset(), a2.Asset()) != nil {
		return string(ledger.TemBAD_CURRENCY)
	}
	fee, _ := tx["TradingFee"].(uint16)
	if amm.ValidateFee(fee) != nil {
		return string(ledger.TemBAD_FEE)
	}
	if l.findPool(a1.Asset(), a2.Asset()) != nil {
		return string(ledger.TecDUPLICATE)
	}
	if code := l.debit(sender, a1); code != "" {
		return string(ledger.TecUNFUNDED_AMM)
	}
	if code := l.debit(sender, a2); code != "" {
		l.credit(sender, a1)
		return string(ledger.TecUNFUNDED_AMM)
	}
	l.accounts[sender].Balance = l.accounts[sender].Balance.Sub(l.reserves.Increment)
	p := l.addPool(a1, a2, amm.InitialLPTokens(a1.Value, a2.Value), fee)
	l.lpLine(sender, p).Balance = p.state.LPToken.Value
	l.accounts[sender].OwnerCount++
	return string(ledger.TesSUCCESS)
}

func (l *Ledger) applyAMMDeposit(sender string, tx ledger.Transaction) string {
	p := l.findPool(wireAsset(tx["Asset"]), wireAsset(tx["Asset2"]))
	if p == nil {
		return string(ledger.TerNO_AMM)
	}
	total := p.state.LPToken.Value
	flags := flagsOf(tx)
	a1, has1 := wireAmount(tx["Amount"])
	a2, has2 := wireAmount(tx["Amount2"])

	var minted decimal.Decimal
	var spend []ledger.Amount
	switch {
	case flags&amm.TfTwoAsset != 0 && has1 && has2:
		r1, _ := p.state.Reserve(a1.Asset())
		r2, _ := p.state.Reserve(a2.Asset())
		minted = amm.BalancedDepositLPTokens(a1.Value, a2.Value, r1, r2, total)
		// only the proportional part of each side is taken
		share := minted.Div(total)
		spend = []ledger.Amount{
			{Currency: a1.Currency, Issuer: a1.Issuer, Value: r1.Mul(share)},
			{Currency: a2.Currency, Issuer: a2.Issuer, Value: r2.Mul(share)},
		}
	case flags&amm.TfSingleAsset != 0 && has1:
		r1, ok := p.state.Reserve(a1.Asset())
		if !ok {
			return string(ledger.TemBAD_CURRENCY)
		}
		minted = amm.SingleAssetLPTokensOut(r1, a1.Value, total, p.state.TradingFee)
		spend = []ledger.Amount{a1}
	default:
		return string(ledger.TemINVALID_FLAG)
	}
	if !minted.IsPositive() {
		return string(ledger.TecAMM_INVALID_TOKENS)
	}

	for i, amt := range spend {
		if code := l.debit(sender, amt); code != "" {
			for _, back := range spend[:i] {
				l.credit(sender, back)
			}
			return string(ledger.TecUNFUNDED_AMM)
		}
	}
	for _, amt := range spend {
		p.adjust(amt.Asset(), amt.Value)
	}
	p.state.LPToken.Value = total.Add(minted)
	ln := l.lpLine(sender, p)
	ln.Balance = ln.Balance.Add(minted)
	return string(ledger.TesSUCCESS)
}

func (l *Ledger) applyAMMWithdraw(sender string, tx ledger.Transaction) string {
	p := l.findPool(wireAsset(tx["Asset"]), wireAsset(tx["Asset2"]))
	if p == nil {
		return string(ledger.TerNO_AMM)
	}
	total := p.state.LPToken.Value
	held := l.lpLine(sender, p).Balance
	flags := flagsOf(tx)

	var burn decimal.Decimal
	var out []ledger.Amount
	proportional := func(lp decimal.Decimal) {
		o1, o2 := amm.AssetsFromLPTokens(lp, total, p.state.Amount1.Value, p.state.Amount2.Value)
		out = []ledger.Amount{
			{Currency: p.state.Amount1.Currency, Issuer: p.state.Amount1.Issuer, Value: o1},
			{Currency: p.state.Amount2.Currency, Issuer: p.state.Amount2.Issuer, Value: o2},
		}
	}

	switch {
	case flags&amm.TfWithdrawAll != 0:
		burn = held
		proportional(burn)
	case flags&amm.TfOneAssetWithdrawAll != 0:
		a, ok := wireAmount(tx["Amount"])
		if !ok {
			return string(ledger.TemBAD_AMOUNT)
		}
		r, found := p.state.Reserve(a.Asset())
		if !found {
			return string(ledger.TemBAD_CURRENCY)
		}
		burn = held
		a.Value = amm.SingleAssetOut(r, total, burn, p.state.TradingFee)
		out = []ledger.Amount{a}
	case flags&amm.TfLPToken != 0:
		lp, ok := wireAmount(tx["LPTokenIn"])
		if !ok {
			return string(ledger.TemBAD_AMM_TOKENS)
		}
		burn = lp.Value
		proportional(burn)
	case flags&amm.TfSingleAsset != 0:
		a, ok := wireAmount(tx["Amount"])
		if !ok {
			return string(ledger.TemBAD_AMOUNT)
		}
		r, found := p.state.Reserve(a.Asset())
		if !found {
			return string(ledger.TemBAD_CURRENCY)
		}
		// invert SingleAssetOut: t = T * (1 - sqrt(1 - a/(A*(1-fee))))
		fraction := a.Value.Div(r.Mul(decimal.NewFromInt(1).Sub(amm.FeeFraction(p.state.TradingFee))))
		if fraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return string(ledger.TecAMM_BALANCE)
		}
		burn = total.Mul(decimal.NewFromInt(1).Sub(amm.Sqrt(decimal.NewFromInt(1).Sub(fraction))))
		out = []ledger.Amount{a}
	default:
		return string(ledger.TemINVALID_FLAG)
	}

	if !burn.IsPositive() || burn.GreaterThan(held) {
		return string(ledger.TecAMM_INVALID_TOKENS)
	}
	for _, amt := range out {
		r, _ := p.state.Reserve(amt.Asset())
		if amt.Value.GreaterThanOrEqual(r) && burn.LessThan(total) {
			return string(ledger.TecAMM_BALANCE)
		}
	}
	for _, amt := range out {
		p.adjust(amt.Asset(), amt.Value.Neg())
		l.credit(sender, amt)
	}
	p.state.LPToken.Value = total.Sub(burn)
	ln := l.lpLine(sender, p)
	ln.Balance = ln.Balance.Sub(burn)
	return string(ledger.TesSUCCESS)
}

func (l *Ledger) applyAMMBid(sender string, tx ledger.Transaction) string {
	p := l.findPool(wireAsset(tx["Asset"]), wireAsset(tx["Asset2"]))
	if p == nil {
		return string(ledger.TerNO_AMM)
	}
	price := amm.MinimumAuctionBid(p.state.AuctionPrice, amm.DefaultBidIncrement)
	if bid, ok := wireAmount(tx["BidMin"]); ok && bid.Value.GreaterThan(price) {
		price = bid.Value
	}
	ln := l.lpLine(sender, p)
	if ln.Balance.LessThan(price) {
		return string(ledger.TecAMM_INVALID_TOKENS)
	}
	ln.Balance = ln.Balance.Sub(price)
	p.state.LPToken.Value = p.state.LPToken.Value.Sub(price)
	p.state.AuctionPrice = price
	p.state.AuctionOwner = sender
	return string(ledger.TesSUCCESS)
}
