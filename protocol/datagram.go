package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// FrameDatagram writes header+payload into dst and returns the framed slice.
// payload must be a whole number of records and no larger than MaxPayloadSize.
// dst is reused when it has enough capacity.
func FrameDatagram(dst, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	if len(payload)%RecordSize != 0 {
		return nil, ErrPartialRecord
	}

	size := HeaderSize + len(payload)
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	//nolint:gosec // bounded by MaxPayloadSize above
	binary.BigEndian.PutUint16(dst[0:2], uint16(len(payload)/RecordSize))
	binary.BigEndian.PutUint32(dst[2:6], crc32.ChecksumIEEE(payload))
	copy(dst[HeaderSize:], payload)
	return dst, nil
}

// OpenDatagram validates a received datagram and returns its record payload.
// The returned slice aliases datagram.
func OpenDatagram(datagram []byte) ([]byte, error) {
	if len(datagram) < HeaderSize {
		return nil, ErrShortDatagram
	}

	count := int(binary.BigEndian.Uint16(datagram[0:2]))
	sum := binary.BigEndian.Uint32(datagram[2:6])
	payload := datagram[HeaderSize:]

	if crc32.ChecksumIEEE(payload) != sum {
		return nil, ErrDatagramChecksum
	}
	if len(payload)%RecordSize != 0 {
		return nil, ErrPartialRecord
	}
	if len(payload)/RecordSize != count {
		return nil, ErrRecordCount
	}
	return payload, nil
}
