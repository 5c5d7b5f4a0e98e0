package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConn carries datagrams as NATS messages on one subject. Core NATS has
// the same at-most-once semantics as UDP, so the pipelines are unchanged.
type NATSConn struct {
	nc      *nats.Conn
	subject string
	sub     *nats.Subscription
}

// DialNATS connects a publish-only NATSConn.
func DialNATS(url, subject string) (*NATSConn, error) {
	nc, err := nats.Connect(url, nats.Name("orderloop-sender"))
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return &NATSConn{nc: nc, subject: subject}, nil
}

// ListenNATS connects a NATSConn that receives every message on subject.
func ListenNATS(url, subject string) (*NATSConn, error) {
	nc, err := nats.Connect(url, nats.Name("orderloop-receiver"))
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}

	sub, err := nc.SubscribeSync(subject)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}
	// Make sure the subscription is registered before the sender publishes.
	if err := nc.Flush(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats flush: %w", err)
	}

	return &NATSConn{nc: nc, subject: subject, sub: sub}, nil
}

func (c *NATSConn) WritePacket(p []byte) (int, error) {
	if err := c.nc.Publish(c.subject, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *NATSConn) ReadPacket(buf []byte, timeout time.Duration) (int, error) {
	if c.sub == nil {
		return 0, ErrNotSubscribed
	}

	msg, err := c.sub.NextMsg(timeout)
	if err != nil {
		if errors.Is(err, nats.ErrTimeout) {
			return 0, ErrReadTimeout
		}
		return 0, err
	}

	n := copy(buf, msg.Data)
	if n < len(msg.Data) {
		return n, ErrTruncated
	}
	return n, nil
}

func (c *NATSConn) Close() error {
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
	}
	if err := c.nc.Flush(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		logger.Warn("nats flush on close failed", "error", err)
	}
	c.nc.Close()
	return nil
}
