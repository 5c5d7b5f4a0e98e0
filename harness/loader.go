package harness

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/0x5487/orderloop/protocol"
	"github.com/0x5487/orderloop/structure"
)

// Scheduler is notified after bytes were pushed to the send channel.
type Scheduler interface {
	Schedule() bool
}

// LogInfo describes an order log on disk.
type LogInfo struct {
	Path     string
	Size     int64
	Records  uint64
	Trailing int64 // bytes after the last whole record
}

// StatLog returns the record count of the log at path. The log is a plain
// concatenation of wire records.
func StatLog(path string) (LogInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return LogInfo{}, fmt.Errorf("stat order log: %w", err)
	}

	size := fi.Size()
	return LogInfo{
		Path:     path,
		Size:     size,
		Records:  uint64(size / protocol.RecordSize),
		Trailing: size % protocol.RecordSize,
	}, nil
}

// Loader replays an order log into the send channel in whole-record chunks of
// at most one datagram payload, scheduling the sender after every chunk.
type Loader struct {
	ch    *structure.ByteChannel
	sched Scheduler
	buf   []byte

	bytes   atomic.Uint64
	records atomic.Uint64
}

// NewLoader creates a Loader feeding ch.
func NewLoader(ch *structure.ByteChannel, sched Scheduler) *Loader {
	return &Loader{
		ch:    ch,
		sched: sched,
		buf:   make([]byte, protocol.MaxPayloadSize),
	}
}

// LoadFile replays the log at path.
func (l *Loader) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open order log: %w", err)
	}
	defer f.Close()

	return l.Load(f)
}

// Load replays r until EOF. A trailing partial record is ignored.
func (l *Loader) Load(r io.Reader) error {
	for {
		n, err := io.ReadFull(r, l.buf)
		whole := n - n%protocol.RecordSize

		if whole > 0 {
			if perr := l.ch.PushChunk(l.buf[:whole]); perr != nil {
				return perr
			}
			l.bytes.Add(uint64(whole))
			l.records.Add(uint64(whole / protocol.RecordSize))
			l.sched.Schedule()
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			if tail := n - whole; tail > 0 {
				logger.Warn("order log ends with a partial record", "bytes", tail)
			}
			return nil
		default:
			return fmt.Errorf("read order log: %w", err)
		}
	}
}

// Bytes returns the bytes pushed to the channel.
func (l *Loader) Bytes() uint64 {
	return l.bytes.Load()
}

// Records returns the records pushed to the channel.
func (l *Loader) Records() uint64 {
	return l.records.Load()
}
