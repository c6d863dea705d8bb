package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-matching-engine/internal/ledger"
	"order-matching-engine/internal/orders"
)

// S1: full match at the same price transfers funds at that price.
func TestProcessOrderFullMatchSamePrice(t *testing.T) {
	p := New()
	_, err := p.Deposit("alice", 100)
	require.NoError(t, err)
	_, err = p.Deposit("bob", 100)
	require.NoError(t, err)

	_, err = p.ProcessOrder(orders.NewOrder(10, 2, orders.Sell, "alice"))
	require.NoError(t, err)

	receipt, err := p.ProcessOrder(orders.NewOrder(10, 2, orders.Buy, "bob"))
	require.NoError(t, err)
	require.Len(t, receipt.Matches, 1)

	aliceBal, err := p.BalanceOf("alice")
	require.NoError(t, err)
	bobBal, err := p.BalanceOf("bob")
	require.NoError(t, err)

	assert.Equal(t, uint64(120), aliceBal)
	assert.Equal(t, uint64(80), bobBal)
}

// S2: price improvement, the buyer pays the resting price, not its limit.
func TestProcessOrderPriceImprovement(t *testing.T) {
	p := New()
	p.Deposit("alice", 100)
	p.Deposit("bob", 100)

	_, err := p.ProcessOrder(orders.NewOrder(10, 1, orders.Sell, "alice"))
	require.NoError(t, err)
	_, err = p.ProcessOrder(orders.NewOrder(11, 1, orders.Buy, "bob"))
	require.NoError(t, err)

	aliceBal, _ := p.BalanceOf("alice")
	bobBal, _ := p.BalanceOf("bob")
	assert.Equal(t, uint64(110), aliceBal)
	assert.Equal(t, uint64(90), bobBal)
}

// S4: multi-level price priority, checking settlement across both fills.
func TestProcessOrderMultiLevelSettlement(t *testing.T) {
	p := New()
	p.Deposit("alice", 100)
	p.Deposit("charlie", 100)
	p.Deposit("bob", 100)

	_, err := p.ProcessOrder(orders.NewOrder(12, 1, orders.Sell, "alice"))
	require.NoError(t, err)
	_, err = p.ProcessOrder(orders.NewOrder(10, 1, orders.Sell, "charlie"))
	require.NoError(t, err)
	_, err = p.ProcessOrder(orders.NewOrder(15, 2, orders.Buy, "bob"))
	require.NoError(t, err)

	aliceBal, _ := p.BalanceOf("alice")
	charlieBal, _ := p.BalanceOf("charlie")
	bobBal, _ := p.BalanceOf("bob")
	assert.Equal(t, uint64(112), aliceBal)
	assert.Equal(t, uint64(110), charlieBal)
	assert.Equal(t, uint64(78), bobBal)
}

// S5: partial consumption settles only the filled portion.
func TestProcessOrderPartialConsumptionSettlesFilledUnits(t *testing.T) {
	p := New()
	p.Deposit("alice", 100)
	p.Deposit("bob", 100)

	_, err := p.ProcessOrder(orders.NewOrder(10, 8, orders.Sell, "alice"))
	require.NoError(t, err)
	_, err = p.ProcessOrder(orders.NewOrder(10, 2, orders.Buy, "bob"))
	require.NoError(t, err)

	aliceBal, _ := p.BalanceOf("alice")
	bobBal, _ := p.BalanceOf("bob")
	assert.Equal(t, uint64(120), aliceBal)
	assert.Equal(t, uint64(80), bobBal)
}

// S6: insufficient buyer balance rejects the order before it reaches the
// book, leaving the ledger, book, and ordinal counter untouched.
func TestProcessOrderUnderFundedBuyLeavesStateUnchanged(t *testing.T) {
	p := New()
	p.Deposit("alice", 100)

	_, err := p.ProcessOrder(orders.NewOrder(10, 11, orders.Buy, "alice"))
	require.Error(t, err)

	var underFunded *ledger.AccountUnderFunded
	require.True(t, errors.As(err, &underFunded))
	assert.Equal(t, "alice", underFunded.Signer)
	assert.Equal(t, uint64(110), underFunded.Amount)

	assert.Empty(t, p.OrderBook(false, false))
	assert.Empty(t, p.History())

	bal, err := p.BalanceOf("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal)
}

func TestProcessOrderUnknownSignerIsNotFound(t *testing.T) {
	p := New()
	_, err := p.ProcessOrder(orders.NewOrder(10, 1, orders.Buy, "ghost"))
	var notFound *ledger.AccountNotFound
	require.True(t, errors.As(err, &notFound))
}

// Conservation of funds: total balances always equal total deposits minus
// total withdrawals, regardless of how many orders crossed in between.
func TestConservationOfFundsAcrossSequence(t *testing.T) {
	p := New()
	p.Deposit("alice", 500)
	p.Deposit("bob", 500)
	p.Deposit("charlie", 500)

	_, err := p.ProcessOrder(orders.NewOrder(10, 5, orders.Sell, "alice"))
	require.NoError(t, err)
	_, err = p.ProcessOrder(orders.NewOrder(10, 2, orders.Buy, "bob"))
	require.NoError(t, err)
	_, err = p.ProcessOrder(orders.NewOrder(10, 3, orders.Buy, "charlie"))
	require.NoError(t, err)
	_, err = p.Withdraw("bob", 10)
	require.NoError(t, err)

	var totalDeposits, totalWithdrawals uint64
	for _, tx := range p.TransactionLog() {
		if tx.Kind == ledger.TxDeposit {
			totalDeposits += tx.Amount
		} else {
			totalWithdrawals += tx.Amount
		}
	}

	var totalBalances uint64
	for _, bal := range p.Accounts() {
		totalBalances += bal
	}

	assert.Equal(t, totalDeposits-totalWithdrawals, totalBalances)
}
