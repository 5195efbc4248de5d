// Package book implements the price-sorted order books and the
// incremental top-N-shares aggregator at the heart of the pricer.
package book

import (
	"github.com/tidwall/btree"

	"github.com/fenrir-labs/pricer/internal/pricer/money"
)

// OrderBook tracks one side's resting orders and the running aggregate for
// liquidating into (Buy-side book) or acquiring from (Sell-side book)
// exactly target shares at the best available price.
//
// Invariant A (book partition): orders strictly better than cursor are
// fully allocated, cursor itself may be partially allocated, and orders
// strictly worse than cursor have zero allocation. When cumulativeShares
// is below target, the worse-than-cursor region is empty.
type OrderBook struct {
	side   Side
	target uint64

	orders  *btree.BTreeG[*Order]
	nextSeq uint64

	valid            bool
	cumulativePrice  money.Cents
	cumulativeShares uint64
	cursor           *Order
}

// NewBuyBook returns a book holding buy-side orders sorted best price
// (highest) first; it emits Ask quotes, since resting buyers make the
// pricer a hypothetical seller.
func NewBuyBook(target uint64) *OrderBook {
	return &OrderBook{side: Buy, target: target, orders: btree.NewBTreeG(buyLess)}
}

// NewSellBook returns a book holding sell-side orders sorted best price
// (lowest) first; it emits Bid quotes.
func NewSellBook(target uint64) *OrderBook {
	return &OrderBook{side: Sell, target: target, orders: btree.NewBTreeG(sellLess)}
}

func buyLess(a, b *Order) bool {
	if a.LimitPrice != b.LimitPrice {
		return a.LimitPrice > b.LimitPrice
	}
	return a.seq < b.seq
}

func sellLess(a, b *Order) bool {
	if a.LimitPrice != b.LimitPrice {
		return a.LimitPrice < b.LimitPrice
	}
	return a.seq < b.seq
}

// Side reports which side this book holds.
func (b *OrderBook) Side() Side { return b.side }

// Target reports the configured target share count.
func (b *OrderBook) Target() uint64 { return b.target }

// Valid reports whether cumulative shares equal target.
func (b *OrderBook) Valid() bool { return b.valid }

// CumulativePrice returns the current price-weighted sum of allocated
// shares. Only meaningful when Valid returns true.
func (b *OrderBook) CumulativePrice() money.Cents { return b.cumulativePrice }

// CumulativeShares returns the current sum of allocated shares.
func (b *OrderBook) CumulativeShares() uint64 { return b.cumulativeShares }

// QuoteChar returns the action character this book reports on a quote
// line: the opposite of its own side, since a resting buy order means the
// pricer would be selling, and vice versa.
func (b *OrderBook) QuoteChar() byte {
	if b.side == Buy {
		return 'S'
	}
	return 'B'
}

// Orders returns a snapshot of the live orders in sorted (best-first)
// order. Intended for tests and diagnostics, not the hot path.
func (b *OrderBook) Orders() []*Order {
	return b.orders.Items()
}

// Len reports the number of live orders resting in the book.
func (b *OrderBook) Len() int { return b.orders.Len() }

func (b *OrderBook) allocate(order *Order, shares uint64) {
	order.Allocated += shares
	b.cumulativeShares += shares
	b.cumulativePrice += money.Cents(shares) * order.LimitPrice
}

func (b *OrderBook) deallocate(order *Order, shares uint64) {
	order.Allocated -= shares
	b.cumulativeShares -= shares
	b.cumulativePrice -= money.Cents(shares) * order.LimitPrice
}

// best returns the best-priced live order, or nil if the book is empty.
func (b *OrderBook) best() *Order {
	item, ok := b.orders.Min()
	if !ok {
		return nil
	}
	return item
}

// stepWorse returns the order immediately worse-priced than order, or nil
// if order is already the worst (or no longer in the book).
func (b *OrderBook) stepWorse(order *Order) *Order {
	it := b.orders.Iter()
	defer it.Release()
	if !it.Seek(order) || !it.Next() {
		return nil
	}
	return it.Item()
}

// stepBetter returns the order immediately better-priced than order, or
// nil if order is already the best.
func (b *OrderBook) stepBetter(order *Order) *Order {
	it := b.orders.Iter()
	defer it.Release()
	if !it.Seek(order) || !it.Prev() {
		return nil
	}
	return it.Item()
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Add inserts a new order and updates the aggregate, returning whether a
// new quote should be emitted. Grounded on PricerBook::AddOrder from the
// original C++ source (original_source/src/PricerBook.h): shares flow
// into the new order either because it lands at the worst position of a
// short book, or because it displaces worse-priced shares it outranks.
func (b *OrderBook) Add(order *Order) bool {
	prevPrice := b.cumulativePrice

	order.seq = b.nextSeq
	b.nextSeq++
	b.orders.Set(order)

	next := b.stepWorse(order)
	needed := b.target - b.cumulativeShares
	newShares := order.TotalShares

	switch {
	case next == nil:
		// Order landed at the worst position in the book. Only take
		// shares if the book is still short of target.
		if needed > 0 {
			take := min64(newShares, needed)
			b.allocate(order, take)
			if take == needed {
				b.valid = true
			}
			b.cursor = order
		}

	case next.Allocated != 0:
		// Order landed at or better than the currently allocated
		// region: it either slots in without displacing anyone, or it
		// must displace marginal shares from the worse end (cursor).
		if newShares <= needed {
			b.allocate(order, newShares)
			b.valid = b.cumulativeShares == b.target
		} else {
			b.allocate(order, newShares)
			overflow := b.cumulativeShares - b.target

			for b.cumulativeShares != b.target {
				last := b.cursor
				if last.Allocated < overflow {
					owned := last.Allocated
					overflow -= owned
					b.deallocate(last, owned)
				} else {
					b.deallocate(last, overflow)
					b.valid = true
					if last.Allocated != 0 {
						break
					}
					overflow = 0
				}
				b.cursor = b.stepBetter(last)
			}
		}

	default:
		// next.Allocated == 0: the order landed in the zero-allocated
		// suffix. By invariant A this is only reachable when the book
		// is already at target (needed == 0), so there is nothing to
		// do — identical to the needed == 0 branch above.
	}

	changed := b.valid && b.cumulativePrice != prevPrice
	return changed
}

// Remove deletes order from the book (a full Reduce) and restores
// invariants, returning whether a new quote should be emitted. Grounded
// on PricerBook::RemoveOrder.
func (b *OrderBook) Remove(order *Order) bool {
	prevPrice := b.cumulativePrice
	prevValid := b.valid

	removed := order.Allocated
	if removed > 0 {
		b.deallocate(order, removed)
		b.valid = false

		if b.cursor == order {
			better := b.stepBetter(order)
			b.orders.Delete(order)
			if better != nil {
				b.cursor = better
			} else {
				b.cursor = b.best()
			}
		} else {
			b.orders.Delete(order)
		}

		b.refill()
	} else {
		b.orders.Delete(order)
	}

	changed := (b.valid != prevValid) || (b.valid && b.cumulativePrice != prevPrice)
	return changed
}

// Reduce decrements order's remaining shares by count (count must be less
// than order.TotalShares; callers route a full reduce through Remove
// instead), returning whether a new quote should be emitted. Grounded on
// PricerBook::ReduceOrder.
func (b *OrderBook) Reduce(order *Order, count uint64) bool {
	prevPrice := b.cumulativePrice
	prevValid := b.valid

	order.TotalShares -= count

	if order.Allocated > order.TotalShares {
		excess := order.Allocated - order.TotalShares
		b.deallocate(order, excess)
		b.valid = false
		b.refill()
	}

	changed := (b.valid != prevValid) || (b.valid && b.cumulativePrice != prevPrice)
	return changed
}

// refill walks from the cursor toward worse prices, pulling shares from
// orders with free capacity until target is reached or the book is
// exhausted. Grounded on PricerBook::FillOrder; scanning starts inclusive
// of the current cursor, since a just-reduced cursor may itself have
// freed capacity.
func (b *OrderBook) refill() {
	if b.cursor == nil {
		b.cursor = b.best()
		if b.cursor == nil {
			return
		}
	}

	it := b.orders.Iter()
	defer it.Release()
	if !it.Seek(b.cursor) {
		return
	}
	cur := it.Item()

	for {
		free := cur.TotalShares - cur.Allocated
		if free == 0 {
			if !it.Next() {
				return
			}
			cur = it.Item()
			continue
		}

		need := b.target - b.cumulativeShares
		if need <= free {
			b.allocate(cur, need)
			b.valid = true
			b.cursor = cur
			return
		}

		b.allocate(cur, free)
		b.cursor = cur
		if !it.Next() {
			return
		}
		cur = it.Item()
	}
}
