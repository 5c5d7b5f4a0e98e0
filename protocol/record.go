package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// Record is the decoded form of one fixed-size wire record.
//
// Layout (network byte order):
//
//	[0]      side tag
//	[1]      version
//	[2:4]    reserved, zero
//	[4:12]   sequence number
//	[12:20]  price
//	[20:28]  quantity
//	[28:32]  instrument code, ASCII zero padded
//	[32:36]  CRC32 (IEEE) of bytes 0..31
type Record struct {
	Side       Side
	Seq        uint64
	Price      uint64
	Quantity   uint64
	Instrument [InstrumentSize]byte
}

// InstrumentCode packs an instrument name into the fixed width record field.
// Names longer than the field are truncated.
func InstrumentCode(name string) [InstrumentSize]byte {
	var code [InstrumentSize]byte
	copy(code[:], name)
	return code
}

// InstrumentName returns the instrument code without its zero padding.
func (r *Record) InstrumentName() string {
	n := 0
	for n < InstrumentSize && r.Instrument[n] != 0 {
		n++
	}
	return string(r.Instrument[:n])
}

// PutRecord encodes r into dst, which must hold at least RecordSize bytes.
func PutRecord(dst []byte, r *Record) {
	_ = dst[RecordSize-1]

	dst[0] = byte(r.Side)
	dst[1] = RecordVersion
	dst[2] = 0
	dst[3] = 0
	binary.BigEndian.PutUint64(dst[4:12], r.Seq)
	binary.BigEndian.PutUint64(dst[12:20], r.Price)
	binary.BigEndian.PutUint64(dst[20:28], r.Quantity)
	copy(dst[28:32], r.Instrument[:])
	binary.BigEndian.PutUint32(dst[32:36], crc32.ChecksumIEEE(dst[:32]))
}

// AppendRecord appends the encoding of r to dst.
func AppendRecord(dst []byte, r *Record) []byte {
	n := len(dst)
	dst = append(dst, make([]byte, RecordSize)...)
	PutRecord(dst[n:], r)
	return dst
}

// DecodeRecord decodes the first RecordSize bytes of src into r.
// The record checksum, version and side tag are validated.
func DecodeRecord(src []byte, r *Record) error {
	if len(src) < RecordSize {
		return ErrShortRecord
	}

	if crc32.ChecksumIEEE(src[:32]) != binary.BigEndian.Uint32(src[32:36]) {
		return ErrRecordChecksum
	}
	if src[1] != RecordVersion {
		return ErrUnknownVersion
	}

	side := Side(src[0])
	if !side.Valid() {
		return ErrUnknownSide
	}

	r.Side = side
	r.Seq = binary.BigEndian.Uint64(src[4:12])
	r.Price = binary.BigEndian.Uint64(src[12:20])
	r.Quantity = binary.BigEndian.Uint64(src[20:28])
	copy(r.Instrument[:], src[28:32])
	return nil
}
