package match

import (
	"math/big"

	"github.com/0x5487/orderloop/protocol"
	"github.com/shopspring/decimal"
)

type Side = protocol.Side

const (
	Buy  Side = protocol.SideBuy
	Sell Side = protocol.SideSell
)

// Order represents an order as it flows through the engine.
// Quantity is the remaining quantity; once the order rests, the book owns it
// and reduces Quantity in place as it is matched.
type Order struct {
	Side       Side                          `json:"side"`
	Price      uint64                        `json:"price"`
	Quantity   uint64                        `json:"quantity"`
	Seq        uint64                        `json:"seq"`
	Instrument [protocol.InstrumentSize]byte `json:"instrument"`
	Timestamp  int64                         `json:"timestamp"` // Unix nano, time the engine accepted it

	// Intrusive linked list pointers (ignored by JSON)
	next *Order
	prev *Order
}

// NewOrder creates an order with the given side, price and quantity.
func NewOrder(side Side, price, quantity uint64) *Order {
	return &Order{
		Side:     side,
		Price:    price,
		Quantity: quantity,
	}
}

// OrderFromRecord builds an order from a decoded wire record.
func OrderFromRecord(r *protocol.Record) *Order {
	return &Order{
		Side:       r.Side,
		Price:      r.Price,
		Quantity:   r.Quantity,
		Seq:        r.Seq,
		Instrument: r.Instrument,
	}
}

// Record converts the order back to its wire form.
func (o *Order) Record() protocol.Record {
	return protocol.Record{
		Side:       o.Side,
		Seq:        o.Seq,
		Price:      o.Price,
		Quantity:   o.Quantity,
		Instrument: o.Instrument,
	}
}

// clone returns a detached copy that is safe to retain.
func (o *Order) clone() Order {
	cpy := *o
	cpy.next = nil
	cpy.prev = nil
	return cpy
}

// Trade is the result of one match step between an incoming (taker) order and
// a resting (maker) order. Price is always the maker's price.
type Trade struct {
	ID        uint64 `json:"id"`
	Price     uint64 `json:"price"`
	Quantity  uint64 `json:"quantity"`
	TakerSide Side   `json:"taker_side"`
	TakerSeq  uint64 `json:"taker_seq"`
	MakerSeq  uint64 `json:"maker_seq"`
	CreatedAt int64  `json:"created_at"` // Unix nano
}

// MakerSide returns the side of the resting order.
func (t *Trade) MakerSide() Side {
	return t.TakerSide.Opposite()
}

// BuySeq returns the sequence number of the buy order in the trade.
func (t *Trade) BuySeq() uint64 {
	if t.TakerSide == Buy {
		return t.TakerSeq
	}
	return t.MakerSeq
}

// SellSeq returns the sequence number of the sell order in the trade.
func (t *Trade) SellSeq() uint64 {
	if t.TakerSide == Sell {
		return t.TakerSeq
	}
	return t.MakerSeq
}

// Notional returns Price * Quantity. It is exact for the full uint64 range.
func (t *Trade) Notional() decimal.Decimal {
	return uint64Decimal(t.Price).Mul(uint64Decimal(t.Quantity))
}

func uint64Decimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
