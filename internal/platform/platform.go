// Package platform is the trading-platform coordinator (C4): it owns the
// account ledger, the matching engine, and the append-only transaction
// log, and binds them together so that a matched fill's funds move exactly
// once per match, atomically, at the resting order's price.
package platform

import (
	"fmt"

	"order-matching-engine/internal/engine"
	"order-matching-engine/internal/ledger"
	"order-matching-engine/internal/money"
	"order-matching-engine/internal/orders"
)

// TradingPlatform orchestrates the ledger and the matching engine. It is
// single-writer: mutating methods must be serialized by the caller (an
// adapter wrapping one instance in a mutex, per the concurrency model).
type TradingPlatform struct {
	accounts *ledger.Accounts
	engine   *engine.Engine
	txLog    []ledger.Tx
}

// New returns a platform with an empty ledger, an empty book, and an empty
// transaction log.
func New() *TradingPlatform {
	return &TradingPlatform{
		accounts: ledger.NewAccounts(),
		engine:   engine.New(),
	}
}

// Deposit forwards to the ledger and appends to the transaction log only on
// success.
func (p *TradingPlatform) Deposit(signer string, amount uint64) (ledger.Tx, error) {
	tx, err := p.accounts.Deposit(signer, amount)
	if err != nil {
		return ledger.Tx{}, err
	}
	p.txLog = append(p.txLog, tx)
	return tx, nil
}

// Withdraw forwards to the ledger and appends to the transaction log only
// on success.
func (p *TradingPlatform) Withdraw(signer string, amount uint64) (ledger.Tx, error) {
	tx, err := p.accounts.Withdraw(signer, amount)
	if err != nil {
		return ledger.Tx{}, err
	}
	p.txLog = append(p.txLog, tx)
	return tx, nil
}

// Send forwards to the ledger and, only on success, appends exactly two
// entries to the transaction log: withdraw first, deposit second.
func (p *TradingPlatform) Send(sender, recipient string, amount uint64) (ledger.Tx, ledger.Tx, error) {
	withdrawTx, depositTx, err := p.accounts.Send(sender, recipient, amount)
	if err != nil {
		return ledger.Tx{}, ledger.Tx{}, err
	}
	p.txLog = append(p.txLog, withdrawTx, depositTx)
	return withdrawTx, depositTx, nil
}

// BalanceOf is a thin read-through to the ledger.
func (p *TradingPlatform) BalanceOf(signer string) (uint64, error) {
	return p.accounts.BalanceOf(signer)
}

// Accounts returns a snapshot of every balance.
func (p *TradingPlatform) Accounts() map[string]uint64 {
	return p.accounts.Snapshot()
}

// TransactionLog returns every transaction-log entry appended so far,
// oldest first.
func (p *TradingPlatform) TransactionLog() []ledger.Tx {
	out := make([]ledger.Tx, len(p.txLog))
	copy(out, p.txLog)
	return out
}

// ProcessOrder is the single mutating entry point that couples the ledger
// to the matching engine:
//  1. The signer must already have a ledger account (sellers included;
//     their balance is checked for existence, not collateralized).
//  2. A buy order's worst-case notional (initial_amount * price) must not
//     exceed the signer's balance, or the order is rejected before it ever
//     reaches the book.
//  3. The engine matches the order and returns a receipt.
//  4. Funds move once per match, at the match's realised price, via
//     Send, buyer to resting signer for a buy, resting signer to seller
//     for a sell.
func (p *TradingPlatform) ProcessOrder(o orders.Order) (orders.Receipt, error) {
	balance, err := p.accounts.BalanceOf(o.Signer)
	if err != nil {
		return orders.Receipt{}, err
	}

	if o.Side == orders.Buy {
		required, ok := money.CheckedMul(o.InitialAmount, o.Price)
		if !ok {
			panic(fmt.Sprintf("platform: notional overflow for order amount=%d price=%d", o.InitialAmount, o.Price))
		}
		if balance < required {
			return orders.Receipt{}, &ledger.AccountUnderFunded{Signer: o.Signer, Amount: required}
		}
	}

	receipt := p.engine.Process(o)

	for _, match := range receipt.Matches {
		unitsFilled, ok := money.CheckedSub(match.CurrentAmount, match.RemainingAmount)
		if !ok {
			panic("platform: current_amount/remaining_amount invariant violated on receipt match")
		}
		notional, ok := money.CheckedMul(unitsFilled, match.Price)
		if !ok {
			panic(fmt.Sprintf("platform: fill notional overflow for units=%d price=%d", unitsFilled, match.Price))
		}

		var sendErr error
		if o.Side == orders.Buy {
			_, _, sendErr = p.Send(o.Signer, match.Signer, notional)
		} else {
			_, _, sendErr = p.Send(match.Signer, o.Signer, notional)
		}
		if sendErr != nil {
			// Funds behind a resting order are not reserved: a resting
			// buyer may have withdrawn since its order was admitted, so a
			// transfer can fail here. The error is returned to the caller;
			// the book mutation and any fills already settled for this
			// receipt are not rolled back.
			return orders.Receipt{}, sendErr
		}
	}

	return receipt, nil
}

// OrderBook is a thin forwarder to the engine's query of the same name.
func (p *TradingPlatform) OrderBook(sort bool, desc bool) []orders.PartialOrder {
	return p.engine.OrderBook(sort, desc)
}

// OrderBookByPrice is a thin forwarder to the engine's query of the same
// name.
func (p *TradingPlatform) OrderBookByPrice(desc bool) []orders.PartialOrder {
	return p.engine.OrderBookByPrice(desc)
}

// History returns every receipt the engine has produced so far.
func (p *TradingPlatform) History() []orders.Receipt {
	return p.engine.History()
}
