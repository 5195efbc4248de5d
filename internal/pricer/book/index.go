package book

// Index maps order id to the live order record, shared across both books
// so a Reduce event can locate its order regardless of side. Single
// writer — no locking.
type Index struct {
	orders map[OrderID]*Order
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{orders: make(map[OrderID]*Order)}
}

// Put records order under its id, overwriting any previous entry.
func (idx *Index) Put(order *Order) {
	idx.orders[order.ID] = order
}

// Get returns the live order for id, if any.
func (idx *Index) Get(id OrderID) (*Order, bool) {
	order, ok := idx.orders[id]
	return order, ok
}

// Delete removes id from the index. Safe to call on a missing id.
func (idx *Index) Delete(id OrderID) {
	delete(idx.orders, id)
}

// Len reports the number of live orders tracked.
func (idx *Index) Len() int {
	return len(idx.orders)
}
