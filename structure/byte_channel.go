package structure

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultByteChannelCapacity is the capacity used by the harness send path.
const DefaultByteChannelCapacity = 16777215

var (
	ErrChannelClosed = errors.New("structure: byte channel closed")
	ErrShortBuffer   = errors.New("structure: destination buffer shorter than requested length")
	ErrChunkTooLarge = errors.New("structure: requested length exceeds channel capacity")
)

// ByteChannel is a bounded FIFO of bytes shared by producer and consumer
// goroutines. Writers block while the buffer is full and readers block until
// the requested amount of data exists.
//
// count is updated under mu together with the cursors, so a reader never
// observes a partially copied chunk. It is also published atomically so
// CountAsReader/CountAsWriter can be used without taking the lock.
type ByteChannel struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf    []byte
	rpos   int
	wpos   int
	closed bool

	count atomic.Int64
}

// NewByteChannel creates a channel holding at most capacity bytes.
func NewByteChannel(capacity int) *ByteChannel {
	if capacity <= 0 {
		panic("byte channel capacity must be positive")
	}

	ch := &ByteChannel{
		buf: make([]byte, capacity),
	}
	ch.notEmpty = sync.NewCond(&ch.mu)
	ch.notFull = sync.NewCond(&ch.mu)
	return ch
}

// Cap returns the fixed capacity in bytes.
func (ch *ByteChannel) Cap() int {
	return len(ch.buf)
}

// CountAsReader returns a snapshot of the buffered byte count.
// Only the reader side may shrink the count, so a reader can rely on at least
// this many bytes being available.
func (ch *ByteChannel) CountAsReader() int {
	return int(ch.count.Load())
}

// CountAsWriter returns a snapshot of the buffered byte count.
// Only the writer side may grow the count, so a writer can rely on at least
// Cap()-CountAsWriter() bytes being free.
func (ch *ByteChannel) CountAsWriter() int {
	return int(ch.count.Load())
}

// PushChunk appends p to the channel, blocking until there is room for it.
// A chunk larger than the capacity is committed in capacity-sized pieces.
func (ch *ByteChannel) PushChunk(p []byte) error {
	for len(p) > 0 {
		n := min(len(p), len(ch.buf))
		if err := ch.push(p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (ch *ByteChannel) push(p []byte) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	for !ch.closed && len(ch.buf)-int(ch.count.Load()) < len(p) {
		ch.notFull.Wait()
	}
	if ch.closed {
		return ErrChannelClosed
	}

	n := copy(ch.buf[ch.wpos:], p)
	if n < len(p) {
		copy(ch.buf, p[n:])
	}
	ch.wpos = (ch.wpos + len(p)) % len(ch.buf)
	ch.count.Add(int64(len(p)))

	ch.notEmpty.Broadcast()
	return nil
}

// PopChunk removes exactly n bytes into buf, blocking until n bytes exist.
// After Close, buffered data can still be popped; once it is insufficient
// PopChunk returns ErrChannelClosed.
func (ch *ByteChannel) PopChunk(buf []byte, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if n > len(buf) {
		return 0, ErrShortBuffer
	}
	if n > len(ch.buf) {
		return 0, ErrChunkTooLarge
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	for !ch.closed && int(ch.count.Load()) < n {
		ch.notEmpty.Wait()
	}
	if int(ch.count.Load()) < n {
		return 0, ErrChannelClosed
	}

	copied := copy(buf[:n], ch.buf[ch.rpos:])
	if copied < n {
		copy(buf[copied:n], ch.buf)
	}
	ch.rpos = (ch.rpos + n) % len(ch.buf)
	ch.count.Add(-int64(n))

	ch.notFull.Broadcast()
	return n, nil
}

// Close wakes every blocked caller. Pushes fail afterwards; pops succeed
// while enough data remains.
func (ch *ByteChannel) Close() {
	ch.mu.Lock()
	ch.closed = true
	ch.mu.Unlock()

	ch.notEmpty.Broadcast()
	ch.notFull.Broadcast()
}
