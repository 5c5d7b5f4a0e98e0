package harness

import (
	"bytes"
	"testing"

	"github.com/0x5487/orderloop/protocol"
	"github.com/0x5487/orderloop/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingScheduler struct {
	calls int
}

func (s *countingScheduler) Schedule() bool {
	s.calls++
	return true
}

func TestLoader_WholeRecordChunks(t *testing.T) {
	path := writeLog(t, 4000, 1, 2, 3)

	info, err := StatLog(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(4000), info.Records)
	assert.Equal(t, int64(3), info.Trailing)

	ch := structure.NewByteChannel(1 << 20)
	sched := &countingScheduler{}
	loader := NewLoader(ch, sched)
	require.NoError(t, loader.LoadFile(path))

	// 1819 + 1819 + 362 records.
	assert.Equal(t, 3, sched.calls)
	assert.Equal(t, uint64(4000), loader.Records())
	assert.Equal(t, uint64(4000*protocol.RecordSize), loader.Bytes())
	assert.Equal(t, 4000*protocol.RecordSize, ch.CountAsReader())

	buf := make([]byte, protocol.RecordSize)
	_, err = ch.PopChunk(buf, protocol.RecordSize)
	require.NoError(t, err)

	var rec protocol.Record
	require.NoError(t, protocol.DecodeRecord(buf, &rec))
	assert.Equal(t, uint64(1), rec.Seq)
	assert.Equal(t, protocol.SideBuy, rec.Side)
}

func TestLoader_ClosedChannel(t *testing.T) {
	ch := structure.NewByteChannel(1 << 20)
	ch.Close()

	loader := NewLoader(ch, &countingScheduler{})
	err := loader.Load(bytes.NewReader(make([]byte, 10*protocol.RecordSize)))
	assert.ErrorIs(t, err, structure.ErrChannelClosed)
}

func TestLoader_OnlyPartialRecord(t *testing.T) {
	ch := structure.NewByteChannel(1024)
	sched := &countingScheduler{}
	loader := NewLoader(ch, sched)

	require.NoError(t, loader.Load(bytes.NewReader(make([]byte, protocol.RecordSize-1))))
	assert.Zero(t, sched.calls)
	assert.Zero(t, ch.CountAsReader())
}
