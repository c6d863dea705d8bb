package engine

import (
	"container/list"

	"github.com/emirpasic/gods/v2/trees/redblacktree"

	"order-matching-engine/internal/orders"
)

// uint64Comparator orders price levels ascending by raw numeric value.
func uint64Comparator(a, b uint64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// priceLevels is a price -> FIFO queue index for one side of the book.
// The FIFO queue is a doubly-linked list of *orders.PartialOrder so that a
// self-match skip can pop from the front, hold the node's value aside, and
// later push it back to the front without disturbing the relative order of
// any entries still ahead of it.
type priceLevels struct {
	tree *redblacktree.Tree[uint64, *list.List]
}

func newPriceLevels() *priceLevels {
	return &priceLevels{tree: redblacktree.NewWith[uint64, *list.List](uint64Comparator)}
}

// queueAt returns the FIFO queue for price, creating it if absent.
func (p *priceLevels) queueAt(price uint64) *list.List {
	q, ok := p.tree.Get(price)
	if !ok {
		q = list.New()
		p.tree.Put(price, q)
	}
	return q
}

// enqueue appends entry to the back of its resting price's queue.
func (p *priceLevels) enqueue(entry orders.PartialOrder) {
	q := p.queueAt(entry.Price)
	q.PushBack(&entry)
}

// gc drops price from the index if its queue is now empty.
func (p *priceLevels) gc(price uint64) {
	if q, ok := p.tree.Get(price); ok && q.Len() == 0 {
		p.tree.Remove(price)
	}
}

// ascendingPrices returns every price with a non-empty queue, lowest first.
func (p *priceLevels) ascendingPrices() []uint64 {
	return p.tree.Keys()
}

// descendingPrices returns every price with a non-empty queue, highest first.
func (p *priceLevels) descendingPrices() []uint64 {
	keys := p.tree.Keys()
	out := make([]uint64, len(keys))
	for i, k := range keys {
		out[len(keys)-1-i] = k
	}
	return out
}

// flattenAscending returns every resting entry across all price levels,
// lowest price first and FIFO order within a level.
func (p *priceLevels) flattenAscending() []orders.PartialOrder {
	var out []orders.PartialOrder
	for _, price := range p.ascendingPrices() {
		q, _ := p.tree.Get(price)
		for e := q.Front(); e != nil; e = e.Next() {
			out = append(out, *e.Value.(*orders.PartialOrder))
		}
	}
	return out
}

// Book is the two-sided order book: asks and bids, each a price -> FIFO
// queue index ordered ascending by price. Both mappings drop empty queues
// eagerly, so an observer never sees a price level with zero entries.
type Book struct {
	asks *priceLevels
	bids *priceLevels
}

// NewBook returns an empty two-sided book.
func NewBook() *Book {
	return &Book{asks: newPriceLevels(), bids: newPriceLevels()}
}
