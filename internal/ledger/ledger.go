// Package ledger is the account ledger (C1): balances keyed by signer, with
// deposit/withdraw/transfer operations whose overflow and underflow
// semantics are exact and typed. The ledger does not lock internally: the
// specification assumes a single writer, and the caller (the trading
// platform, or an adapter wrapping it) is responsible for serializing
// mutating calls.
package ledger

import "order-matching-engine/internal/money"

// TxKind distinguishes the two entries a Tx can represent.
type TxKind int

const (
	TxDeposit TxKind = iota
	TxWithdraw
)

func (k TxKind) String() string {
	if k == TxWithdraw {
		return "withdraw"
	}
	return "deposit"
}

// Tx is a single append-only transaction-log entry.
type Tx struct {
	Kind    TxKind
	Account string
	Amount  uint64
}

// Accounts is the ledger: a mapping from signer to current balance.
// Accounts are created on first deposit and are never removed.
type Accounts struct {
	balances map[string]uint64
}

// NewAccounts returns an empty ledger.
func NewAccounts() *Accounts {
	return &Accounts{balances: make(map[string]uint64)}
}

// BalanceOf returns the current balance for signer. It never creates an
// account; an absent signer yields AccountNotFound.
func (a *Accounts) BalanceOf(signer string) (uint64, error) {
	bal, ok := a.balances[signer]
	if !ok {
		return 0, &AccountNotFound{Signer: signer}
	}
	return bal, nil
}

// Snapshot returns a copy of the full balances map, safe for the caller to
// retain or mutate.
func (a *Accounts) Snapshot() map[string]uint64 {
	out := make(map[string]uint64, len(a.balances))
	for signer, bal := range a.balances {
		out[signer] = bal
	}
	return out
}

// Deposit credits amount to signer, creating the account if it does not yet
// exist. Fails with AccountOverFunded iff current+amount would exceed
// math.MaxUint64; on failure the balance is unchanged.
func (a *Accounts) Deposit(signer string, amount uint64) (Tx, error) {
	current := a.balances[signer]
	next, ok := money.CheckedAdd(current, amount)
	if !ok {
		return Tx{}, &AccountOverFunded{Signer: signer, Amount: amount}
	}
	a.balances[signer] = next
	return Tx{Kind: TxDeposit, Account: signer, Amount: amount}, nil
}

// Withdraw debits amount from signer. Fails with AccountNotFound if the
// account does not exist, or AccountUnderFunded if amount exceeds the
// current balance; on either failure the balance is unchanged.
func (a *Accounts) Withdraw(signer string, amount uint64) (Tx, error) {
	current, ok := a.balances[signer]
	if !ok {
		return Tx{}, &AccountNotFound{Signer: signer}
	}
	if amount > current {
		return Tx{}, &AccountUnderFunded{Signer: signer, Amount: amount}
	}
	a.balances[signer] = current - amount
	return Tx{Kind: TxWithdraw, Account: signer, Amount: amount}, nil
}

// Send moves amount from sender to recipient atomically: neither balance
// changes unless both the withdraw and the deposit would succeed. The
// recipient is pre-checked first (existence, then overflow headroom), so
// when neither account exists the surfaced error is AccountNotFound for the
// recipient, not the sender.
func (a *Accounts) Send(sender, recipient string, amount uint64) (Tx, Tx, error) {
	recipientBalance, ok := a.balances[recipient]
	if !ok {
		return Tx{}, Tx{}, &AccountNotFound{Signer: recipient}
	}
	if _, ok := money.CheckedAdd(recipientBalance, amount); !ok {
		return Tx{}, Tx{}, &AccountOverFunded{Signer: recipient, Amount: amount}
	}

	withdrawTx, err := a.Withdraw(sender, amount)
	if err != nil {
		return Tx{}, Tx{}, err
	}

	depositTx, err := a.Deposit(recipient, amount)
	if err != nil {
		// The pre-check above guarantees this deposit cannot overflow, and
		// nothing else touches the ledger between the two calls under the
		// single-writer contract. Reaching here is a broken invariant.
		if _, rerr := a.Deposit(sender, amount); rerr != nil {
			panic("ledger: unable to roll back send after pre-checked deposit failed: " + rerr.Error())
		}
		panic("ledger: pre-checked deposit failed unexpectedly: " + err.Error())
	}

	return withdrawTx, depositTx, nil
}
