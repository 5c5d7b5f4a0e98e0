package transport

import (
	"errors"
	"sync/atomic"
	"time"

	match "github.com/0x5487/orderloop"
	"github.com/0x5487/orderloop/protocol"
)

// maxPacketSize is the largest UDP payload; reading into a buffer of this size
// never truncates.
const maxPacketSize = 1<<16 - 1

// OrderSink consumes decoded orders. *match.MatchingEngine satisfies it.
type OrderSink interface {
	Submit(order *match.Order) error
}

// Receiver turns datagrams into orders. It is a thread.Source: one Poll reads
// and handles at most one datagram.
//
// Integrity failures never stop the receiver. A datagram whose header
// checksum, length or record count is wrong is dropped whole; a record with a
// bad checksum or unknown side is dropped alone.
type Receiver struct {
	conn PacketConn
	sink OrderSink
	buf  []byte
	rec  protocol.Record

	bytesReceived     atomic.Uint64
	datagramsReceived atomic.Uint64
	datagramsDropped  atomic.Uint64
	recordsReceived   atomic.Uint64
	recordsDropped    atomic.Uint64
	trailingBytes     atomic.Uint64
}

// NewReceiver creates a Receiver reading conn and submitting to sink.
func NewReceiver(conn PacketConn, sink OrderSink) *Receiver {
	return &Receiver{
		conn: conn,
		sink: sink,
		buf:  make([]byte, maxPacketSize),
	}
}

// Poll waits at most timeout for one datagram and handles it.
func (r *Receiver) Poll(timeout time.Duration) (bool, error) {
	n, err := r.conn.ReadPacket(r.buf, timeout)
	switch {
	case errors.Is(err, ErrReadTimeout):
		return false, nil
	case errors.Is(err, ErrTruncated):
		r.datagramsReceived.Add(1)
		r.bytesReceived.Add(uint64(n))
		r.datagramsDropped.Add(1)
		logger.Warn("datagram dropped", "size", n, "error", err)
		return true, nil
	case err != nil:
		return false, err
	}

	r.Handle(r.buf[:n])
	return true, nil
}

// Handle processes one datagram.
func (r *Receiver) Handle(datagram []byte) {
	size := uint64(len(datagram))
	r.datagramsReceived.Add(1)
	r.bytesReceived.Add(size)

	payload, err := protocol.OpenDatagram(datagram)
	if err != nil {
		r.datagramsDropped.Add(1)
		if errors.Is(err, protocol.ErrPartialRecord) || errors.Is(err, protocol.ErrRecordCount) {
			r.trailingBytes.Add(size)
		}
		logger.Warn("datagram dropped", "size", size, "error", err)
		return
	}

	for off := 0; off < len(payload); off += protocol.RecordSize {
		if err := protocol.DecodeRecord(payload[off:off+protocol.RecordSize], &r.rec); err != nil {
			r.recordsDropped.Add(1)
			logger.Warn("record dropped", "offset", off, "error", err)
			continue
		}

		r.recordsReceived.Add(1)
		if err := r.sink.Submit(match.OrderFromRecord(&r.rec)); err != nil {
			r.recordsDropped.Add(1)
			logger.Warn("order rejected", "seq", r.rec.Seq, "error", err)
		}
	}
}

// BytesReceived returns the datagram bytes read, headers included.
func (r *Receiver) BytesReceived() uint64 {
	return r.bytesReceived.Load()
}

// DatagramsReceived returns the number of datagrams read.
func (r *Receiver) DatagramsReceived() uint64 {
	return r.datagramsReceived.Load()
}

// DatagramsDropped returns the number of datagrams that failed validation.
func (r *Receiver) DatagramsDropped() uint64 {
	return r.datagramsDropped.Load()
}

// RecordsReceived returns the number of records that decoded cleanly.
func (r *Receiver) RecordsReceived() uint64 {
	return r.recordsReceived.Load()
}

// RecordsDropped returns the number of records discarded.
func (r *Receiver) RecordsDropped() uint64 {
	return r.recordsDropped.Load()
}

// TrailingBytes returns the size of datagrams dropped for a length that is not
// a whole number of records or does not match the header count.
func (r *Receiver) TrailingBytes() uint64 {
	return r.trailingBytes.Load()
}
