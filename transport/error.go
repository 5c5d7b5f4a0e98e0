package transport

import "errors"

var (
	// ErrReadTimeout is returned by PacketConn.ReadPacket when no datagram
	// arrived within the timeout. It is not a failure.
	ErrReadTimeout = errors.New("transport: read timeout")
	// ErrShortWrite means a datagram was only partially accepted.
	ErrShortWrite = errors.New("transport: short write")
	// ErrTruncated means a datagram did not fit the read buffer.
	ErrTruncated = errors.New("transport: datagram truncated")
	// ErrUnknownKind is returned for an unsupported transport name.
	ErrUnknownKind = errors.New("transport: unknown kind")
	// ErrNotSubscribed is returned when reading from a publish-only connection.
	ErrNotSubscribed = errors.New("transport: connection is publish only")
)
