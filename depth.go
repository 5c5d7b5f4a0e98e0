package match

import (
	"sync"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// DepthChange represents a change in the order book depth.
type DepthChange struct {
	Side     Side
	Price    uint64
	SizeDiff decimal.Decimal
}

// RestDepthChange returns the depth added by an order resting on its ledger.
func RestDepthChange(order *Order) DepthChange {
	return DepthChange{
		Side:     order.Side,
		Price:    order.Price,
		SizeDiff: uint64Decimal(order.Quantity),
	}
}

// TradeDepthChange returns the depth removed by a trade.
// A trade reduces liquidity on the maker side, at the maker's price.
func TradeDepthChange(trade *Trade) DepthChange {
	return DepthChange{
		Side:     trade.MakerSide(),
		Price:    trade.Price,
		SizeDiff: uint64Decimal(trade.Quantity).Neg(),
	}
}

// DepthLevel is one aggregated price level.
type DepthLevel struct {
	Price uint64          `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// DepthView maintains an aggregated view of the book, tracking only price
// levels and their total size. It is rebuilt purely from engine events, so it
// can be attached as the ledger delegate of both sides plus a trade delegate.
type DepthView struct {
	mu     sync.RWMutex
	events uint64
	ask    *treemap.TreeMap[uint64, decimal.Decimal]
	bid    *treemap.TreeMap[uint64, decimal.Decimal]
}

// NewDepthView creates an empty DepthView.
func NewDepthView() *DepthView {
	less := func(a, b uint64) bool {
		return a < b
	}
	return &DepthView{
		ask: treemap.NewWithKeyCompare[uint64, decimal.Decimal](less),
		bid: treemap.NewWithKeyCompare[uint64, decimal.Decimal](less),
	}
}

func (dv *DepthView) AddedToLedger(order *Order) {
	dv.Apply(RestDepthChange(order))
}

func (dv *DepthView) TradeExecuted(trade *Trade) {
	dv.Apply(TradeDepthChange(trade))
}

// Apply adds a depth change. Levels that reach zero are removed.
func (dv *DepthView) Apply(change DepthChange) {
	dv.mu.Lock()
	defer dv.mu.Unlock()

	dv.events++
	tree := dv.tree(change.Side)
	if tree == nil {
		return
	}

	size, _ := tree.Get(change.Price)
	size = size.Add(change.SizeDiff)
	if size.Sign() <= 0 {
		tree.Del(change.Price)
		return
	}
	tree.Set(change.Price, size)
}

// Events returns the number of changes applied.
func (dv *DepthView) Events() uint64 {
	dv.mu.RLock()
	defer dv.mu.RUnlock()
	return dv.events
}

// Depth returns the aggregated size at a price level, or zero.
func (dv *DepthView) Depth(side Side, price uint64) decimal.Decimal {
	dv.mu.RLock()
	defer dv.mu.RUnlock()

	tree := dv.tree(side)
	if tree == nil {
		return decimal.Zero
	}
	size, ok := tree.Get(price)
	if !ok {
		return decimal.Zero
	}
	return size
}

// Levels returns up to limit levels of one side, best price first.
func (dv *DepthView) Levels(side Side, limit int) []DepthLevel {
	dv.mu.RLock()
	defer dv.mu.RUnlock()

	levels := make([]DepthLevel, 0, limit)
	switch side {
	case Sell:
		for it := dv.ask.Iterator(); it.Valid() && len(levels) < limit; it.Next() {
			levels = append(levels, DepthLevel{Price: it.Key(), Size: it.Value()})
		}
	case Buy:
		for it := dv.bid.Reverse(); it.Valid() && len(levels) < limit; it.Next() {
			levels = append(levels, DepthLevel{Price: it.Key(), Size: it.Value()})
		}
	}
	return levels
}

// LevelCount returns the number of price levels on one side.
func (dv *DepthView) LevelCount(side Side) int {
	dv.mu.RLock()
	defer dv.mu.RUnlock()

	tree := dv.tree(side)
	if tree == nil {
		return 0
	}
	return tree.Len()
}

func (dv *DepthView) tree(side Side) *treemap.TreeMap[uint64, decimal.Decimal] {
	switch side {
	case Buy:
		return dv.bid
	case Sell:
		return dv.ask
	default:
		return nil
	}
}
