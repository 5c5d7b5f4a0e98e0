package harness

import (
	"sync"
	"sync/atomic"

	match "github.com/0x5487/orderloop"
	"github.com/shopspring/decimal"
)

// Counter is the instrumentation delegate of a run. It is registered as the
// order delegate, as the ledger delegate of both sides and as a trade
// delegate, and signals completion once every expected order was received.
//
// Processed counts rest and trade events: for a log whose orders all either
// rest or fill in a single trade it ends equal to the received count.
type Counter struct {
	expected uint64

	received  atomic.Uint64
	processed atomic.Uint64
	rested    atomic.Uint64
	trades    atomic.Uint64

	mu       sync.Mutex
	volume   uint64
	notional decimal.Decimal

	depth   *match.DepthView
	metrics *Metrics

	once sync.Once
	done chan struct{}
}

// NewCounter creates a Counter expecting the given number of orders. depth
// and metrics are optional.
func NewCounter(expected uint64, depth *match.DepthView, metrics *Metrics) *Counter {
	c := &Counter{
		expected: expected,
		notional: decimal.Zero,
		depth:    depth,
		metrics:  metrics,
		done:     make(chan struct{}),
	}
	if expected == 0 {
		c.complete()
	}
	return c
}

func (c *Counter) OrderReceived(*match.Order) {
	n := c.received.Add(1)
	if c.metrics != nil {
		c.metrics.RecordReceived()
	}
	if n >= c.expected {
		c.complete()
	}
}

func (c *Counter) AddedToLedger(order *match.Order) {
	c.rested.Add(1)
	c.processed.Add(1)
	if c.metrics != nil {
		c.metrics.RecordRested()
	}
	if c.depth != nil {
		c.depth.AddedToLedger(order)
	}
}

func (c *Counter) TradeExecuted(trade *match.Trade) {
	c.trades.Add(1)
	c.processed.Add(1)

	c.mu.Lock()
	c.volume += trade.Quantity
	c.notional = c.notional.Add(trade.Notional())
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordTrade(trade.Quantity)
	}
	if c.depth != nil {
		c.depth.TradeExecuted(trade)
	}
}

func (c *Counter) complete() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Done is closed when the expected number of orders has been received.
func (c *Counter) Done() <-chan struct{} {
	return c.done
}

func (c *Counter) Expected() uint64 {
	return c.expected
}

func (c *Counter) Received() uint64 {
	return c.received.Load()
}

func (c *Counter) Processed() uint64 {
	return c.processed.Load()
}

func (c *Counter) Rested() uint64 {
	return c.rested.Load()
}

func (c *Counter) Trades() uint64 {
	return c.trades.Load()
}

// Volume returns the traded quantity and notional.
func (c *Counter) Volume() (uint64, decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume, c.notional
}
