package protocol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	prices := []uint64{0, 1, 10, 1 << 32, math.MaxUint64 - 1, math.MaxUint64}
	quantities := []uint64{0, 1, 255, 1 << 40, math.MaxUint64}

	buf := make([]byte, RecordSize)
	for _, side := range []Side{SideBuy, SideSell} {
		for _, price := range prices {
			for _, qty := range quantities {
				in := Record{
					Side:       side,
					Seq:        price ^ qty,
					Price:      price,
					Quantity:   qty,
					Instrument: InstrumentCode("BTC"),
				}
				PutRecord(buf, &in)

				var out Record
				require.NoError(t, DecodeRecord(buf, &out))
				assert.Equal(t, in, out)
			}
		}
	}
}

func TestRecordNetworkByteOrder(t *testing.T) {
	buf := make([]byte, RecordSize)
	PutRecord(buf, &Record{Side: SideSell, Seq: 7, Price: 0x0102030405060708, Quantity: 1})

	assert.Equal(t, byte(SideSell), buf[0])
	assert.Equal(t, byte(RecordVersion), buf[1])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 7}, buf[4:12])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf[12:20])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, buf[20:28])
}

func TestDecodeRecordRejects(t *testing.T) {
	good := AppendRecord(nil, &Record{Side: SideBuy, Price: 10, Quantity: 1})

	t.Run("short", func(t *testing.T) {
		var r Record
		assert.ErrorIs(t, DecodeRecord(good[:RecordSize-1], &r), ErrShortRecord)
	})

	t.Run("corrupted", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[15] ^= 0xff
		var r Record
		assert.ErrorIs(t, DecodeRecord(bad, &r), ErrRecordChecksum)
	})

	t.Run("unknown side", func(t *testing.T) {
		buf := make([]byte, RecordSize)
		PutRecord(buf, &Record{Side: Side(9), Price: 10, Quantity: 1})
		var r Record
		assert.ErrorIs(t, DecodeRecord(buf, &r), ErrUnknownSide)
	})
}

func TestInstrumentName(t *testing.T) {
	r := Record{Instrument: InstrumentCode("ETH")}
	assert.Equal(t, "ETH", r.InstrumentName())

	r.Instrument = InstrumentCode("DOGECOIN")
	assert.Equal(t, "DOGE", r.InstrumentName())
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
	assert.False(t, Side(0).Valid())
}
