// Package engine implements the matching engine (C3): a two-sided book
// under strict price/arrival-order (FIFO) priority with a no-self-trade
// rule. The engine owns the book and its ordinal counter exclusively; it
// never touches an account ledger; that coupling belongs to the trading
// platform one layer up.
package engine

import (
	"container/list"
	"sort"

	"order-matching-engine/internal/money"
	"order-matching-engine/internal/orders"
)

// Engine is the matching engine's mutable state: the ordinal counter, the
// two-sided book, and the receipt history it has produced so far.
type Engine struct {
	ordinal uint64
	book    *Book
	history []orders.Receipt
}

// New returns an empty matching engine with its ordinal counter at zero.
func New() *Engine {
	return &Engine{book: NewBook()}
}

// Process ingests a submission: it is assigned the next ordinal, walked
// against the opposite side of the book in best-price-first order (asks
// ascending for a buy, bids descending for a sell), and any residue is
// rested on its own side at its own limit price. A copy of the resulting
// receipt is appended to history before it is returned.
func (e *Engine) Process(o orders.Order) orders.Receipt {
	e.ordinal++
	working := o.ToPartial(e.ordinal)
	receipt := orders.Receipt{Ordinal: working.Ordinal}

	if o.Side == orders.Buy {
		for _, price := range e.book.asks.ascendingPrices() {
			if price > o.Price || working.RemainingAmount == 0 {
				break
			}
			e.drainLevel(e.book.asks, price, &working, &receipt)
		}
	} else {
		for _, price := range e.book.bids.descendingPrices() {
			if price < o.Price || working.RemainingAmount == 0 {
				break
			}
			e.drainLevel(e.book.bids, price, &working, &receipt)
		}
	}

	if working.RemainingAmount > 0 {
		resting := orders.PartialOrder{
			Ordinal:         working.Ordinal,
			Price:           o.Price,
			Side:            o.Side,
			Signer:          o.Signer,
			CurrentAmount:   working.RemainingAmount,
			RemainingAmount: working.RemainingAmount,
		}
		if o.Side == orders.Buy {
			e.book.bids.enqueue(resting)
		} else {
			e.book.asks.enqueue(resting)
		}
	}

	e.history = append(e.history, receipt)
	return receipt
}

// drainLevel matches incoming against one price level and garbage-collects
// the level if matching emptied its queue.
func (e *Engine) drainLevel(side *priceLevels, price uint64, incoming *orders.PartialOrder, receipt *orders.Receipt) {
	q, ok := side.tree.Get(price)
	if !ok {
		return
	}
	matches, _ := matchLevel(q, incoming, price)
	receipt.Matches = append(receipt.Matches, matches...)
	side.gc(price)
}

// matchLevel drains one price level's FIFO queue against incoming,
// returning receipt-bound snapshots of every resting entry it touched.
// stop is true iff incoming was fully filled while processing this level,
// in which case the caller must not attempt any further level. Self-match
// entries are popped aside and re-pushed to the front of the queue before
// matchLevel returns, preserving their relative FIFO order among themselves
// and ahead of whatever entry (if any) is left at the front.
func matchLevel(q *list.List, incoming *orders.PartialOrder, levelPrice uint64) (matches []orders.PartialOrder, stop bool) {
	var aside []*orders.PartialOrder
	defer func() {
		for i := len(aside) - 1; i >= 0; i-- {
			q.PushFront(aside[i])
		}
	}()

	for incoming.RemainingAmount > 0 {
		front := q.Front()
		if front == nil {
			return matches, false
		}
		resting := front.Value.(*orders.PartialOrder)

		if resting.Signer == incoming.Signer {
			q.Remove(front)
			aside = append(aside, resting)
			continue
		}

		if incoming.RemainingAmount < resting.RemainingAmount {
			remainingAfter, ok := money.CheckedSub(resting.RemainingAmount, incoming.RemainingAmount)
			if !ok {
				panic("engine: remaining_amount invariant violated during partial fill")
			}
			matches = append(matches, orders.PartialOrder{
				Ordinal:         resting.Ordinal,
				Price:           levelPrice,
				Side:            resting.Side,
				Signer:          resting.Signer,
				CurrentAmount:   resting.CurrentAmount,
				RemainingAmount: remainingAfter,
			})
			// The node stays at the front of the queue: it represents the
			// residual resting position for future processing cycles, now
			// snapshotting its own remaining amount as the amount it
			// carries into its next matching attempt.
			resting.CurrentAmount = remainingAfter
			resting.RemainingAmount = remainingAfter
			incoming.RemainingAmount = 0
			return matches, true
		}

		filled := resting.RemainingAmount
		nextIncoming, ok := money.CheckedSub(incoming.RemainingAmount, filled)
		if !ok {
			panic("engine: remaining_amount invariant violated during full consumption")
		}
		incoming.RemainingAmount = nextIncoming

		matches = append(matches, orders.PartialOrder{
			Ordinal:         resting.Ordinal,
			Price:           levelPrice,
			Side:            resting.Side,
			Signer:          resting.Signer,
			CurrentAmount:   resting.CurrentAmount,
			RemainingAmount: 0,
		})
		q.Remove(front)

		if incoming.RemainingAmount == 0 {
			return matches, true
		}
	}
	return matches, false
}

// OrderBook returns every resting entry, asks first (ascending price) then
// bids (ascending price), each flattened in FIFO order. If sort_ is true the
// result is instead ordered by ordinal: ascending unless desc is set.
func (e *Engine) OrderBook(sort_, desc bool) []orders.PartialOrder {
	out := append(e.book.asks.flattenAscending(), e.book.bids.flattenAscending()...)
	if !sort_ {
		return out
	}
	sortByOrdinal(out, desc)
	return out
}

// OrderBookByPrice returns every resting entry across both sides, sorted by
// price (ascending by default, descending if desc); within a price, entries
// are ordered by ordinal ascending.
func (e *Engine) OrderBookByPrice(desc bool) []orders.PartialOrder {
	out := append(e.book.asks.flattenAscending(), e.book.bids.flattenAscending()...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			if desc {
				return out[i].Price > out[j].Price
			}
			return out[i].Price < out[j].Price
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out
}

// History returns every receipt the engine has produced so far, oldest
// first. The slice is owned by the caller.
func (e *Engine) History() []orders.Receipt {
	out := make([]orders.Receipt, len(e.history))
	copy(out, e.history)
	return out
}

func sortByOrdinal(entries []orders.PartialOrder, desc bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		if desc {
			return entries[i].Ordinal > entries[j].Ordinal
		}
		return entries[i].Ordinal < entries[j].Ordinal
	})
}
