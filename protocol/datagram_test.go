package protocol

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadOf(n int) []byte {
	var payload []byte
	for i := 0; i < n; i++ {
		payload = AppendRecord(payload, &Record{Side: SideBuy, Seq: uint64(i), Price: 100, Quantity: 1})
	}
	return payload
}

func TestMaxPayloadFitsDatagram(t *testing.T) {
	assert.Equal(t, 1819*RecordSize, MaxPayloadSize)
	assert.LessOrEqual(t, HeaderSize+MaxPayloadSize, MaxDatagramSize)
}

func TestFrameOpenDatagram(t *testing.T) {
	payload := payloadOf(3)

	frame, err := FrameDatagram(nil, payload)
	require.NoError(t, err)
	assert.Len(t, frame, HeaderSize+3*RecordSize)

	got, err := OpenDatagram(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFrameDatagramReusesBuffer(t *testing.T) {
	dst := make([]byte, 0, MaxDatagramSize)
	frame, err := FrameDatagram(dst, payloadOf(2))
	require.NoError(t, err)
	assert.Equal(t, &dst[:1][0], &frame[0])
}

func TestFrameDatagramRejects(t *testing.T) {
	_, err := FrameDatagram(nil, make([]byte, RecordSize+1))
	assert.ErrorIs(t, err, ErrPartialRecord)

	_, err = FrameDatagram(nil, make([]byte, MaxPayloadSize+RecordSize))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestOpenDatagramRejects(t *testing.T) {
	frame, err := FrameDatagram(nil, payloadOf(2))
	require.NoError(t, err)

	t.Run("short", func(t *testing.T) {
		_, err := OpenDatagram(frame[:HeaderSize-1])
		assert.ErrorIs(t, err, ErrShortDatagram)
	})

	t.Run("checksum", func(t *testing.T) {
		bad := append([]byte(nil), frame...)
		bad[HeaderSize+5] ^= 0x01
		_, err := OpenDatagram(bad)
		assert.ErrorIs(t, err, ErrDatagramChecksum)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := OpenDatagram(frame[:len(frame)-1])
		assert.ErrorIs(t, err, ErrDatagramChecksum)
	})

	t.Run("trailing partial record", func(t *testing.T) {
		// A sender bug that ships a partial record with a valid checksum.
		payload := append(payloadOf(1), 0xAA, 0xBB)
		bad, err := frameUnchecked(payload, 1)
		require.NoError(t, err)
		_, err = OpenDatagram(bad)
		assert.ErrorIs(t, err, ErrPartialRecord)
	})

	t.Run("count mismatch", func(t *testing.T) {
		bad, err := frameUnchecked(payloadOf(2), 3)
		require.NoError(t, err)
		_, err = OpenDatagram(bad)
		assert.ErrorIs(t, err, ErrRecordCount)
	})
}

// frameUnchecked builds a datagram with an arbitrary count and a valid checksum.
func frameUnchecked(payload []byte, count uint16) ([]byte, error) {
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(frame[0:2], count)
	binary.BigEndian.PutUint32(frame[2:6], crc32.ChecksumIEEE(payload))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}
