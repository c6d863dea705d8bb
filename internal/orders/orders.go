// Package orders holds the value shapes exchanged between the matching
// engine and its callers: submitted orders, resting partial orders, and
// fill receipts. Nothing in this package mutates a book or a ledger.
package orders

// Side is a two-valued tag for which book an order belongs to.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// Order is an immutable submission into the matching engine. No identifier
// is assigned by the submitter; the engine assigns one (its Ordinal) on
// ingestion.
type Order struct {
	Price         uint64
	InitialAmount uint64
	Side          Side
	Signer        string
}

// NewOrder constructs a submission. initialAmount is immutable thereafter.
func NewOrder(price, initialAmount uint64, side Side, signer string) Order {
	return Order{
		Price:         price,
		InitialAmount: initialAmount,
		Side:          side,
		Signer:        signer,
	}
}

// PartialOrder is the unit of state held in the book and the unit reported
// in receipts. CurrentAmount is the size the entry carried entering its
// current matching attempt; RemainingAmount is what is still unfilled at
// the end of that attempt. The invariant RemainingAmount <= CurrentAmount
// must hold at every observation point.
type PartialOrder struct {
	Ordinal         uint64
	Price           uint64
	Side            Side
	Signer          string
	CurrentAmount   uint64
	RemainingAmount uint64
}

// ToPartial converts a submission into its initial working partial order,
// assigning ordinal and starting both CurrentAmount and RemainingAmount at
// the submission's InitialAmount.
func (o Order) ToPartial(ordinal uint64) PartialOrder {
	return PartialOrder{
		Ordinal:         ordinal,
		Price:           o.Price,
		Side:            o.Side,
		Signer:          o.Signer,
		CurrentAmount:   o.InitialAmount,
		RemainingAmount: o.InitialAmount,
	}
}

// Receipt is the result of processing one submitted order: the ordinal
// assigned to that submission, and every resting entry it fully or
// partially consumed, each stamped with its realised price and post-fill
// remaining amount.
type Receipt struct {
	Ordinal uint64
	Matches []PartialOrder
}
