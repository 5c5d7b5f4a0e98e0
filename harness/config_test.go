package harness

import (
	"testing"
	"time"

	"github.com/0x5487/orderloop/transport"
	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultLogPath, cfg.LogPath)
	assert.Equal(t, 16777215, cfg.Capacity)
	assert.Equal(t, 2*time.Millisecond, cfg.SendDelay)
	assert.Equal(t, transport.KindUDP, cfg.Transport)
	assert.Zero(t, cfg.Timeout)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingInstrument)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithInstrument("BTC"),
		WithCapacity(1<<20),
		WithTransport(transport.KindNATS),
		WithNATS("nats://example:4222", "orders"),
		WithMetricsAddr(":9100"),
		WithTimeout(time.Minute),
	)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "nats://example:4222", cfg.NATSURL)
	assert.Equal(t, "orders", cfg.NATSSubject)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig(WithInstrument("BTC"), WithCapacity(100))
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidCapacity)

	cfg = NewConfig(WithInstrument("BTC"), WithTransport("carrier-pigeon"))
	assert.ErrorIs(t, cfg.Validate(), transport.ErrUnknownKind)

	cfg = NewConfig(WithInstrument("BTC"), WithLogPath(""))
	assert.ErrorIs(t, cfg.Validate(), ErrMissingLog)
}
