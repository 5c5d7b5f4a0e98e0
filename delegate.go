package match

import "sync"

// Delegates are invoked synchronously on the goroutine that submits the order,
// in registration order. They must be fast and must not block: a slow
// delegate stalls matching.
//
// The *Order passed to a delegate is owned by the engine and may change after
// the call returns; copy it if it has to be kept. A *Trade is handed over and
// may be retained.

// OrderDelegate is notified of every order before it is matched.
type OrderDelegate interface {
	OrderReceived(order *Order)
}

// LedgerDelegate is notified when the remainder of an order rests on a ledger.
type LedgerDelegate interface {
	AddedToLedger(order *Order)
}

// TradeDelegate is notified of every executed trade.
type TradeDelegate interface {
	TradeExecuted(trade *Trade)
}

// MemoryDelegate stores every event in memory, useful for testing.
// It implements OrderDelegate, LedgerDelegate and TradeDelegate.
type MemoryDelegate struct {
	mu       sync.RWMutex
	Received []Order
	Rested   []Order
	Trades   []*Trade

	events []string
}

// NewMemoryDelegate creates a new MemoryDelegate.
func NewMemoryDelegate() *MemoryDelegate {
	return &MemoryDelegate{}
}

func (m *MemoryDelegate) OrderReceived(order *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Received = append(m.Received, order.clone())
	m.events = append(m.events, "received")
}

func (m *MemoryDelegate) AddedToLedger(order *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rested = append(m.Rested, order.clone())
	m.events = append(m.events, "rested")
}

func (m *MemoryDelegate) TradeExecuted(trade *Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Trades = append(m.Trades, trade)
	m.events = append(m.events, "trade")
}

// TradeCount returns the number of trades stored.
func (m *MemoryDelegate) TradeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Trades)
}

// Trade returns the trade at the specified index.
func (m *MemoryDelegate) Trade(index int) *Trade {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Trades[index]
}

// Events returns the event kinds in the order they were observed.
// Kinds are "received", "rested" and "trade".
func (m *MemoryDelegate) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]string, len(m.events))
	copy(events, m.events)
	return events
}

// DiscardDelegate discards all events, useful for benchmarking.
type DiscardDelegate struct{}

// NewDiscardDelegate creates a new DiscardDelegate.
func NewDiscardDelegate() *DiscardDelegate {
	return &DiscardDelegate{}
}

func (d *DiscardDelegate) OrderReceived(*Order) {}

func (d *DiscardDelegate) AddedToLedger(*Order) {}

func (d *DiscardDelegate) TradeExecuted(*Trade) {}
