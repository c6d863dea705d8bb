package ledger

import "fmt"

// AccountNotFound is returned when an operation addresses a signer with no
// ledger entry. balance_of, withdraw, and send (recipient first, then
// sender) all surface this unchanged to their caller.
type AccountNotFound struct {
	Signer string
}

func (e *AccountNotFound) Error() string {
	return fmt.Sprintf("account not found: %s", e.Signer)
}

// AccountUnderFunded is returned when a withdrawal (direct, or via a buy
// order's notional) exceeds the account's current balance. Amount carries
// the amount that was requested, not the deficit.
type AccountUnderFunded struct {
	Signer string
	Amount uint64
}

func (e *AccountUnderFunded) Error() string {
	return fmt.Sprintf("account %s underfunded for amount %d", e.Signer, e.Amount)
}

// AccountOverFunded is returned when a deposit (direct, or the recipient
// leg of a send) would push a balance past math.MaxUint64. Amount carries
// the attempted increment.
type AccountOverFunded struct {
	Signer string
	Amount uint64
}

func (e *AccountOverFunded) Error() string {
	return fmt.Sprintf("account %s overfunded by amount %d", e.Signer, e.Amount)
}
