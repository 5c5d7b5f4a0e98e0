package harness

import (
	"fmt"
	"time"

	"github.com/0x5487/orderloop/protocol"
	"github.com/0x5487/orderloop/structure"
	"github.com/0x5487/orderloop/thread"
	"github.com/0x5487/orderloop/transport"
)

const (
	DefaultLogPath     = "orders.log"
	DefaultAddr        = "127.0.0.1:7711"
	DefaultNATSSubject = "orderloop.datagrams"
)

// Config holds the settings of one harness run.
type Config struct {
	LogPath      string
	Instrument   string
	Addr         string
	Capacity     int
	SendDelay    time.Duration
	PollInterval time.Duration
	Transport    transport.Kind
	NATSURL      string
	NATSSubject  string
	MetricsAddr  string        // empty disables the /metrics endpoint
	Timeout      time.Duration // zero waits until completion or interruption
}

// Option configures a Config.
type Option func(*Config)

// DefaultConfig returns the settings used when no option overrides them.
func DefaultConfig() Config {
	return Config{
		LogPath:      DefaultLogPath,
		Addr:         DefaultAddr,
		Capacity:     structure.DefaultByteChannelCapacity,
		SendDelay:    transport.DefaultSendDelay,
		PollInterval: thread.DefaultPollInterval,
		Transport:    transport.KindUDP,
		NATSURL:      "nats://127.0.0.1:4222",
		NATSSubject:  DefaultNATSSubject,
	}
}

// NewConfig applies opts on top of DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithLogPath(path string) Option {
	return func(c *Config) {
		c.LogPath = path
	}
}

func WithInstrument(name string) Option {
	return func(c *Config) {
		c.Instrument = name
	}
}

func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

func WithCapacity(capacity int) Option {
	return func(c *Config) {
		c.Capacity = capacity
	}
}

func WithSendDelay(d time.Duration) Option {
	return func(c *Config) {
		c.SendDelay = d
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}

func WithTransport(kind transport.Kind) Option {
	return func(c *Config) {
		c.Transport = kind
	}
}

// WithNATS selects the NATS server and subject used by the NATS transport.
func WithNATS(url, subject string) Option {
	return func(c *Config) {
		c.NATSURL = url
		c.NATSSubject = subject
	}
}

func WithMetricsAddr(addr string) Option {
	return func(c *Config) {
		c.MetricsAddr = addr
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if c.Instrument == "" {
		return ErrMissingInstrument
	}
	if c.LogPath == "" {
		return ErrMissingLog
	}
	if c.Capacity < protocol.MaxPayloadSize {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Capacity)
	}
	if _, err := transport.ParseKind(string(c.Transport)); err != nil {
		return err
	}
	return nil
}
