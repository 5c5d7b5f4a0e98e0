package transport

import (
	"fmt"
	"time"
)

// Kind names a datagram transport.
type Kind string

const (
	KindUDP  Kind = "udp"
	KindNATS Kind = "nats"
)

// ParseKind validates a transport name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindUDP, KindNATS:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// PacketConn is a message-oriented connection: every WritePacket is delivered
// (or lost) as one unit and every ReadPacket returns one unit.
type PacketConn interface {
	// WritePacket sends p as one datagram and returns the bytes accepted.
	WritePacket(p []byte) (int, error)
	// ReadPacket waits at most timeout for one datagram. It returns
	// ErrReadTimeout when none arrived.
	ReadPacket(buf []byte, timeout time.Duration) (int, error)
	Close() error
}
