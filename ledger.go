package match

// Ledger owns the resting orders of one side and the single delegate that is
// told when an order rests there.
type Ledger struct {
	side     Side
	book     *queue
	delegate LedgerDelegate
}

func newLedger(side Side) *Ledger {
	l := &Ledger{side: side}
	if side == Buy {
		l.book = NewBuyerQueue()
	} else {
		l.book = NewSellerQueue()
	}
	return l
}

// Side returns the side this ledger holds.
func (l *Ledger) Side() Side {
	return l.side
}

// SetDelegate replaces the ledger delegate and returns the previous one.
func (l *Ledger) SetDelegate(d LedgerDelegate) LedgerDelegate {
	prev := l.delegate
	l.delegate = d
	return prev
}

// Delegate returns the registered ledger delegate, if any.
func (l *Ledger) Delegate() LedgerDelegate {
	return l.delegate
}

// OrderCount returns the number of resting orders.
func (l *Ledger) OrderCount() int64 {
	return l.book.orderCount()
}

// DepthCount returns the number of price levels.
func (l *Ledger) DepthCount() int64 {
	return l.book.depthCount()
}

// Best returns the best resting price.
func (l *Ledger) Best() (uint64, bool) {
	head := l.book.peekHeadOrder()
	if head == nil {
		return 0, false
	}
	return head.Price, true
}

// Depth returns up to limit price levels, best first.
func (l *Ledger) Depth(limit uint32) []*DepthItem {
	return l.book.depth(limit)
}

// Orders returns copies of the resting orders in priority order.
func (l *Ledger) Orders() []Order {
	return l.book.toSnapshot()
}

// rest appends the order behind every resting order at its price and notifies
// the delegate.
func (l *Ledger) rest(order *Order) {
	l.book.pushBack(order)
	if l.delegate != nil {
		l.delegate.AddedToLedger(order)
	}
}

// crosses reports whether an incoming order may trade with the resting order.
func crosses(incoming, resting *Order) bool {
	if incoming.Side == Buy {
		return incoming.Price >= resting.Price
	}
	return incoming.Price <= resting.Price
}
