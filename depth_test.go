package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthViewTracksEngine(t *testing.T) {
	engine := NewMatchingEngine()
	view := NewDepthView()
	_, err := engine.SetLedgerDelegate(Buy, view)
	require.NoError(t, err)
	_, err = engine.SetLedgerDelegate(Sell, view)
	require.NoError(t, err)
	engine.AddTradeDelegate(view)

	require.NoError(t, engine.Submit(NewOrder(Sell, 101, 5)))
	require.NoError(t, engine.Submit(NewOrder(Sell, 102, 7)))
	require.NoError(t, engine.Submit(NewOrder(Buy, 99, 3)))
	require.NoError(t, engine.Submit(NewOrder(Buy, 98, 1)))
	require.NoError(t, engine.Submit(NewOrder(Buy, 101, 2)))

	assert.True(t, decimal.NewFromInt(3).Equal(view.Depth(Sell, 101)))
	assert.True(t, decimal.NewFromInt(7).Equal(view.Depth(Sell, 102)))
	assert.True(t, view.Depth(Sell, 150).IsZero())

	asks := view.Levels(Sell, 10)
	require.Len(t, asks, 2)
	assert.Equal(t, uint64(101), asks[0].Price)
	assert.Equal(t, uint64(102), asks[1].Price)

	bids := view.Levels(Buy, 1)
	require.Len(t, bids, 1)
	assert.Equal(t, uint64(99), bids[0].Price)

	// The aggregated view agrees with the engine's own books.
	for _, side := range []Side{Buy, Sell} {
		ledger := engine.Ledger(side)
		depth := ledger.Depth(100)
		require.Equal(t, len(depth), view.LevelCount(side))
		for _, item := range depth {
			assert.True(t, decimal.NewFromInt(int64(item.Size)).Equal(view.Depth(side, item.Price)))
		}
	}
}

func TestDepthViewRemovesEmptyLevels(t *testing.T) {
	view := NewDepthView()
	view.AddedToLedger(&Order{Side: Buy, Price: 50, Quantity: 2})
	view.TradeExecuted(&Trade{TakerSide: Sell, Price: 50, Quantity: 2})

	assert.Equal(t, 0, view.LevelCount(Buy))
	assert.Equal(t, uint64(2), view.Events())
}

func TestDepthChanges(t *testing.T) {
	change := RestDepthChange(&Order{Side: Sell, Price: 10, Quantity: 4})
	assert.Equal(t, Sell, change.Side)
	assert.True(t, decimal.NewFromInt(4).Equal(change.SizeDiff))

	change = TradeDepthChange(&Trade{TakerSide: Sell, Price: 9, Quantity: 3})
	assert.Equal(t, Buy, change.Side, "trade reduces the maker side")
	assert.Equal(t, uint64(9), change.Price)
	assert.True(t, decimal.NewFromInt(-3).Equal(change.SizeDiff))
}
