package match

import (
	"sync/atomic"
	"time"
)

// MatchingEngine owns one ledger per side and matches incoming orders with
// price-time priority.
//
// The engine is not internally synchronized: Submit must be called from a
// single goroutine at a time, and delegates are expected to be registered
// before the first order is submitted.
type MatchingEngine struct {
	buy  *Ledger
	sell *Ledger

	orderDelegates []OrderDelegate
	tradeDelegates []TradeDelegate

	clock   func() time.Time
	tradeID uint64

	submitted atomic.Uint64
	trades    atomic.Uint64
	rested    atomic.Uint64
}

// EngineOption configures a MatchingEngine.
type EngineOption func(*MatchingEngine)

// WithClock sets the time source used to stamp orders and trades.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *MatchingEngine) {
		e.clock = clock
	}
}

// NewMatchingEngine creates a new matching engine instance.
func NewMatchingEngine(opts ...EngineOption) *MatchingEngine {
	e := &MatchingEngine{
		buy:   newLedger(Buy),
		sell:  newLedger(Sell),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ledger returns the ledger of the given side, or nil for an unknown side.
func (e *MatchingEngine) Ledger(side Side) *Ledger {
	switch side {
	case Buy:
		return e.buy
	case Sell:
		return e.sell
	default:
		return nil
	}
}

// SetLedgerDelegate replaces the delegate of one side's ledger and returns the
// previous one.
func (e *MatchingEngine) SetLedgerDelegate(side Side, d LedgerDelegate) (LedgerDelegate, error) {
	l := e.Ledger(side)
	if l == nil {
		return nil, ErrUnknownSide
	}
	return l.SetDelegate(d), nil
}

// AddTradeDelegate appends a trade subscriber.
func (e *MatchingEngine) AddTradeDelegate(d TradeDelegate) {
	e.tradeDelegates = append(e.tradeDelegates, d)
}

// AddOrderDelegate appends an order-received subscriber.
func (e *MatchingEngine) AddOrderDelegate(d OrderDelegate) {
	e.orderDelegates = append(e.orderDelegates, d)
}

// Submit runs one incoming order through the engine.
//
// Events for the order fire in this order: order received, then one trade
// executed per match step, then order rested if anything remains.
func (e *MatchingEngine) Submit(order *Order) error {
	if order == nil {
		return ErrInvalidParam
	}
	own := e.Ledger(order.Side)
	if own == nil {
		logger.Warn("order rejected", "seq", order.Seq, "side", int(order.Side), "error", ErrUnknownSide)
		return ErrUnknownSide
	}
	opposite := e.Ledger(order.Side.Opposite())

	now := e.clock().UnixNano()
	order.Timestamp = now
	e.submitted.Add(1)

	for _, d := range e.orderDelegates {
		d.OrderReceived(order)
	}

	for order.Quantity > 0 {
		maker := opposite.book.peekHeadOrder()
		if maker == nil || !crosses(order, maker) {
			break
		}

		qty := min(order.Quantity, maker.Quantity)
		trade := &Trade{
			Price:     maker.Price,
			Quantity:  qty,
			TakerSide: order.Side,
			TakerSeq:  order.Seq,
			MakerSeq:  maker.Seq,
			CreatedAt: now,
		}

		order.Quantity -= qty
		opposite.book.fill(maker, qty)

		e.tradeID++
		trade.ID = e.tradeID
		e.trades.Add(1)

		for _, d := range e.tradeDelegates {
			d.TradeExecuted(trade)
		}
	}

	if order.Quantity > 0 {
		e.rested.Add(1)
		own.rest(order)
	}

	return nil
}

// Stats contains counters and book sizes of an engine.
type Stats struct {
	Submitted     uint64 `json:"submitted"`
	Trades        uint64 `json:"trades"`
	Rested        uint64 `json:"rested"`
	BidOrderCount int64  `json:"bid_order_count"`
	BidDepthCount int64  `json:"bid_depth_count"`
	AskOrderCount int64  `json:"ask_order_count"`
	AskDepthCount int64  `json:"ask_depth_count"`
}

// Stats returns engine counters. The book sizes are only consistent when read
// from the submitting goroutine or after it has stopped.
func (e *MatchingEngine) Stats() Stats {
	return Stats{
		Submitted:     e.submitted.Load(),
		Trades:        e.trades.Load(),
		Rested:        e.rested.Load(),
		BidOrderCount: e.buy.OrderCount(),
		BidDepthCount: e.buy.DepthCount(),
		AskOrderCount: e.sell.OrderCount(),
		AskDepthCount: e.sell.DepthCount(),
	}
}
