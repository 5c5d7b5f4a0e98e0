package harness

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportThroughput(t *testing.T) {
	r := &Report{
		Elapsed:        2 * time.Second,
		Trades:         500,
		OrdersReceived: 1000,
		BytesSent:      3 << 20,
	}

	assert.Equal(t, "250", r.TradesPerSecond().String())
	assert.Equal(t, "500", r.OrdersPerSecond().String())
	assert.Equal(t, "3", r.MegabytesSent().String())
	assert.Equal(t, "1.5", r.MegabytesPerSecond().String())
}

func TestReportZeroElapsed(t *testing.T) {
	r := &Report{Trades: 10}
	assert.True(t, r.TradesPerSecond().IsZero())
}

func TestReportWriteTo(t *testing.T) {
	r := &Report{RunID: "abc", Instrument: "ETH", RestingBids: 2, RestingAsks: 1}

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Contains(t, buf.String(), "run abc instrument ETH")
	assert.Equal(t, 3, r.Resting())
}
