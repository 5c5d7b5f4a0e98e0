package harness

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

var (
	megabyte = decimal.NewFromInt(1 << 20)
	second   = decimal.NewFromInt(int64(time.Second))
)

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// Report summarises one run.
type Report struct {
	RunID      string        `json:"run_id"`
	Instrument string        `json:"instrument"`
	Transport  string        `json:"transport"`
	Completed  bool          `json:"completed"`
	Elapsed    time.Duration `json:"elapsed"`

	RecordsExpected uint64 `json:"records_expected"`
	RecordsLoaded   uint64 `json:"records_loaded"`
	RecordsSent     uint64 `json:"records_sent"`
	RecordsReceived uint64 `json:"records_received"`
	RecordsDropped  uint64 `json:"records_dropped"`

	BytesSent         uint64 `json:"bytes_sent"`
	BytesReceived     uint64 `json:"bytes_received"`
	DatagramsSent     uint64 `json:"datagrams_sent"`
	DatagramsReceived uint64 `json:"datagrams_received"`
	DatagramsDropped  uint64 `json:"datagrams_dropped"`
	SendErrors        uint64 `json:"send_errors"`

	OrdersReceived  uint64          `json:"orders_received"`
	OrdersProcessed uint64          `json:"orders_processed"`
	OrdersRested    uint64          `json:"orders_rested"`
	Trades          uint64          `json:"trades"`
	TradeVolume     uint64          `json:"trade_volume"`
	TradeNotional   decimal.Decimal `json:"trade_notional"`

	RestingBids int    `json:"resting_bids"`
	RestingAsks int    `json:"resting_asks"`
	BidLevels   int64  `json:"bid_levels"`
	AskLevels   int64  `json:"ask_levels"`
	BestBid     uint64 `json:"best_bid,omitempty"`
	BestAsk     uint64 `json:"best_ask,omitempty"`
}

// Resting returns the number of orders left on both ledgers.
func (r *Report) Resting() int {
	return r.RestingBids + r.RestingAsks
}

func (r *Report) perSecond(v decimal.Decimal) decimal.Decimal {
	if r.Elapsed <= 0 {
		return decimal.Zero
	}
	return v.Mul(second).Div(decimal.NewFromInt(int64(r.Elapsed))).Round(2)
}

// TradesPerSecond returns the trade throughput.
func (r *Report) TradesPerSecond() decimal.Decimal {
	return r.perSecond(fromUint64(r.Trades))
}

// OrdersPerSecond returns the order throughput.
func (r *Report) OrdersPerSecond() decimal.Decimal {
	return r.perSecond(fromUint64(r.OrdersReceived))
}

// MegabytesSent returns BytesSent in MiB.
func (r *Report) MegabytesSent() decimal.Decimal {
	return fromUint64(r.BytesSent).Div(megabyte).Round(2)
}

// MegabytesPerSecond returns the send throughput in MiB/s.
func (r *Report) MegabytesPerSecond() decimal.Decimal {
	return r.perSecond(fromUint64(r.BytesSent).Div(megabyte))
}

// WriteTo prints the report in a human readable form.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	lines := []string{
		fmt.Sprintf("run %s instrument %s transport %s completed %t", r.RunID, r.Instrument, r.Transport, r.Completed),
		fmt.Sprintf("records loaded %d sent %d received %d expected %d dropped %d", r.RecordsLoaded, r.RecordsSent, r.RecordsReceived, r.RecordsExpected, r.RecordsDropped),
		fmt.Sprintf("bytes sent %d received %d", r.BytesSent, r.BytesReceived),
		fmt.Sprintf("datagrams sent %d received %d dropped %d send errors %d", r.DatagramsSent, r.DatagramsReceived, r.DatagramsDropped, r.SendErrors),
		fmt.Sprintf("orders received %d processed %d rested %d", r.OrdersReceived, r.OrdersProcessed, r.OrdersRested),
		fmt.Sprintf("trades %d volume %d notional %s", r.Trades, r.TradeVolume, r.TradeNotional.String()),
		fmt.Sprintf("elapsed %s", r.Elapsed),
		fmt.Sprintf("trades/s %s orders/s %s", r.TradesPerSecond(), r.OrdersPerSecond()),
		fmt.Sprintf("MB sent %s MB/s %s", r.MegabytesSent(), r.MegabytesPerSecond()),
		fmt.Sprintf("resting bids %d (%d levels) asks %d (%d levels)", r.RestingBids, r.BidLevels, r.RestingAsks, r.AskLevels),
		fmt.Sprintf("best bid %d best ask %d", r.BestBid, r.BestAsk),
	}
	for _, line := range lines {
		n, err := fmt.Fprintln(w, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Log writes the report as one structured record.
func (r *Report) Log(l *slog.Logger) {
	l.Info("run finished",
		"run_id", r.RunID,
		"instrument", r.Instrument,
		"completed", r.Completed,
		"elapsed", r.Elapsed.String(),
		"records_loaded", r.RecordsLoaded,
		"records_sent", r.RecordsSent,
		"records_received", r.RecordsReceived,
		"bytes_sent", r.BytesSent,
		"bytes_received", r.BytesReceived,
		"trades", r.Trades,
		"orders_processed", r.OrdersProcessed,
		"datagrams_dropped", r.DatagramsDropped,
		"records_dropped", r.RecordsDropped,
		"trades_per_second", r.TradesPerSecond().String(),
		"orders_per_second", r.OrdersPerSecond().String(),
		"mb_per_second", r.MegabytesPerSecond().String(),
		"resting", r.Resting(),
	)
}
