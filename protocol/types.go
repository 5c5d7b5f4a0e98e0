package protocol

import "errors"

// Side represents the order side (Buy/Sell).
// The numeric value is also the side tag carried on the wire.
type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

// String returns the lowercase name of the side.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the known sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side an order of side s matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

const (
	// RecordVersion is the version byte written into every wire record.
	RecordVersion = 1

	// RecordSize is the fixed size of one wire record in bytes.
	RecordSize = 36

	// HeaderSize is the size of the datagram header: record count (2) + payload CRC32 (4).
	HeaderSize = 6

	// MaxDatagramSize bounds a datagram including its header.
	MaxDatagramSize = 65490

	// MaxPayloadSize is the largest payload that fits one datagram. It is a whole
	// number of records (1819).
	MaxPayloadSize = (MaxDatagramSize - HeaderSize) / RecordSize * RecordSize

	// InstrumentSize is the width of the instrument code field.
	InstrumentSize = 4
)

var (
	ErrShortRecord      = errors.New("protocol: record shorter than record size")
	ErrRecordChecksum   = errors.New("protocol: record checksum mismatch")
	ErrUnknownSide      = errors.New("protocol: unknown side tag")
	ErrUnknownVersion   = errors.New("protocol: unknown record version")
	ErrShortDatagram    = errors.New("protocol: datagram shorter than header")
	ErrDatagramChecksum = errors.New("protocol: datagram checksum mismatch")
	ErrPartialRecord    = errors.New("protocol: datagram payload is not a whole number of records")
	ErrRecordCount      = errors.New("protocol: datagram record count does not match payload")
	ErrPayloadTooLarge  = errors.New("protocol: payload exceeds max payload size")
)
