package harness

import (
	"testing"

	match "github.com/0x5487/orderloop"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isDone(c *Counter) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

func TestCounter_CompletesOnce(t *testing.T) {
	c := NewCounter(3, nil, nil)

	c.OrderReceived(&match.Order{})
	c.OrderReceived(&match.Order{})
	assert.False(t, isDone(c))

	c.OrderReceived(&match.Order{})
	assert.True(t, isDone(c))

	// Extra events must not close the channel twice.
	assert.NotPanics(t, func() {
		c.OrderReceived(&match.Order{})
	})
	assert.Equal(t, uint64(4), c.Received())
}

func TestCounter_ZeroExpected(t *testing.T) {
	assert.True(t, isDone(NewCounter(0, nil, nil)))
}

func TestCounter_WithEngine(t *testing.T) {
	depth := match.NewDepthView()
	metrics := NewMetrics("run", "ETH")
	c := NewCounter(4, depth, metrics)

	engine := match.NewMatchingEngine()
	engine.AddOrderDelegate(c)
	engine.AddTradeDelegate(c)
	_, err := engine.SetLedgerDelegate(match.Buy, c)
	require.NoError(t, err)
	_, err = engine.SetLedgerDelegate(match.Sell, c)
	require.NoError(t, err)

	require.NoError(t, engine.Submit(match.NewOrder(match.Sell, 10, 5)))
	require.NoError(t, engine.Submit(match.NewOrder(match.Sell, 11, 5)))
	require.NoError(t, engine.Submit(match.NewOrder(match.Buy, 11, 7)))
	require.NoError(t, engine.Submit(match.NewOrder(match.Buy, 9, 1)))

	assert.True(t, isDone(c))
	assert.Equal(t, uint64(4), c.Received())
	assert.Equal(t, uint64(2), c.Trades())
	assert.Equal(t, uint64(3), c.Rested())
	assert.Equal(t, uint64(5), c.Processed())

	volume, notional := c.Volume()
	assert.Equal(t, uint64(7), volume)
	assert.Equal(t, "72", notional.String())

	assert.Equal(t, 1, depth.LevelCount(match.Sell))
	assert.Equal(t, 1, depth.LevelCount(match.Buy))

	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.ordersReceived))
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.ordersProcessed))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.tradesExecuted))
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.tradeVolume))
}
