package transport

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/0x5487/orderloop/protocol"
	"github.com/0x5487/orderloop/structure"
	"github.com/0x5487/orderloop/thread"
)

// DefaultSendDelay paces datagrams so a local receiver is not overrun.
const DefaultSendDelay = 2 * time.Millisecond

// retryPause bounds the spin rate of a failing socket when no delay is set.
const retryPause = time.Millisecond

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSendDelay sets the pause taken before every datagram write.
func WithSendDelay(d time.Duration) SenderOption {
	return func(s *Sender) {
		s.delay = d
	}
}

// Sender moves whole records from a ByteChannel onto a PacketConn.
//
// Draining runs as a single-shot task on an executor role. A Gate guarantees
// that at most one drain task is queued or running at any time; producers
// call Schedule after every push and extra calls are no-ops.
type Sender struct {
	ch    *structure.ByteChannel
	exec  *thread.TaskQueue
	conn  PacketConn
	gate  thread.Gate
	delay time.Duration

	payload []byte
	frame   []byte

	bytesSent     atomic.Uint64
	datagramsSent atomic.Uint64
	recordsSent   atomic.Uint64
	sendErrors    atomic.Uint64
	drains        atomic.Uint64
}

// NewSender creates a Sender draining ch through conn on exec.
func NewSender(ch *structure.ByteChannel, exec *thread.TaskQueue, conn PacketConn, opts ...SenderOption) *Sender {
	s := &Sender{
		ch:      ch,
		exec:    exec,
		conn:    conn,
		delay:   DefaultSendDelay,
		payload: make([]byte, protocol.MaxPayloadSize),
		frame:   make([]byte, 0, protocol.MaxDatagramSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues a drain task if at least one record is buffered and no
// drain is in flight. It reports whether a task was queued.
func (s *Sender) Schedule() bool {
	if s.ch.CountAsReader() < protocol.RecordSize {
		return false
	}
	if !s.gate.TryAcquire() {
		return false
	}
	if !s.exec.AddTask(thread.TaskFunc(s.run)) {
		s.gate.Release()
		return false
	}
	return true
}

// InFlight reports whether a drain task is queued or running.
func (s *Sender) InFlight() bool {
	return s.gate.Held()
}

// BytesSent returns the datagram bytes written, headers included.
func (s *Sender) BytesSent() uint64 {
	return s.bytesSent.Load()
}

// DatagramsSent returns the number of datagrams written.
func (s *Sender) DatagramsSent() uint64 {
	return s.datagramsSent.Load()
}

// RecordsSent returns the number of records carried by written datagrams.
func (s *Sender) RecordsSent() uint64 {
	return s.recordsSent.Load()
}

// SendErrors returns the number of failed writes that were retried.
func (s *Sender) SendErrors() uint64 {
	return s.sendErrors.Load()
}

// Drains returns the number of drain passes run.
func (s *Sender) Drains() uint64 {
	return s.drains.Load()
}

func (s *Sender) run() {
	for {
		if !s.drain() {
			return
		}

		// A producer may have pushed between the last count check and the
		// release, seen the gate held, and skipped scheduling.
		if s.exec.State() != thread.StateRunning ||
			s.ch.CountAsReader() < protocol.RecordSize || !s.gate.TryAcquire() {
			return
		}
	}
}

// drain sends buffered records until less than one record remains. It
// returns false when it gave up early: the executor is stopping, the channel
// was closed or a chunk could not be framed.
func (s *Sender) drain() bool {
	defer s.gate.Release()
	s.drains.Add(1)

	for {
		if s.exec.State() != thread.StateRunning {
			return false
		}

		n := min(s.ch.CountAsReader(), protocol.MaxPayloadSize)
		n -= n % protocol.RecordSize
		if n < protocol.RecordSize {
			return true
		}

		if _, err := s.ch.PopChunk(s.payload, n); err != nil {
			if !errors.Is(err, structure.ErrChannelClosed) {
				logger.Error("pop chunk failed", "size", n, "error", err)
			}
			return false
		}

		frame, err := protocol.FrameDatagram(s.frame[:0], s.payload[:n])
		if err != nil {
			logger.Error("frame datagram failed", "size", n, "error", err)
			return false
		}
		s.frame = frame

		if !s.send(frame) {
			return false
		}
		s.recordsSent.Add(uint64(n / protocol.RecordSize))
	}
}

// send writes one datagram, retrying until it is fully accepted or the
// executor is asked to stop. A datagram is never split: a short write resends
// it whole so the receiver's framing stays intact.
func (s *Sender) send(frame []byte) bool {
	for {
		if s.delay > 0 {
			time.Sleep(s.delay)
		}

		n, err := s.conn.WritePacket(frame)
		if err == nil && n < len(frame) {
			err = ErrShortWrite
		}
		if err == nil {
			s.bytesSent.Add(uint64(n))
			s.datagramsSent.Add(1)
			return true
		}

		s.sendErrors.Add(1)
		logger.Warn("send datagram failed, retrying", "size", len(frame), "written", n, "error", err)

		if s.exec.State() != thread.StateRunning {
			return false
		}
		if s.delay <= 0 {
			time.Sleep(retryPause)
		}
	}
}
