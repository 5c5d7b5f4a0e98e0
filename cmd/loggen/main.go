package main

import (
	"bufio"
	"flag"
	"log/slog"
	"math/rand"
	"os"

	"github.com/0x5487/orderloop/protocol"
)

func main() {
	out := flag.String("out", "orders.log", "output path")
	n := flag.Int("n", 1000000, "number of records")
	instrument := flag.String("instrument", "BTC", "instrument code, at most 4 characters")
	price := flag.Uint64("price", 10000, "mid price")
	spread := flag.Uint64("spread", 0, "maximum distance from the mid price")
	maxQty := flag.Uint64("max-qty", 1, "maximum quantity per order")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if len(*instrument) > protocol.InstrumentSize {
		logger.Error("instrument code too long", "instrument", *instrument)
		os.Exit(1)
	}
	if *spread > *price {
		logger.Error("spread larger than price", "price", *price, "spread", *spread)
		os.Exit(1)
	}
	if *maxQty == 0 {
		*maxQty = 1
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Error("create log failed", "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	w := bufio.NewWriterSize(f, 1<<20)
	code := protocol.InstrumentCode(*instrument)
	rec := make([]byte, protocol.RecordSize)

	var buys, sells int
	for i := 0; i < *n; i++ {
		r := protocol.Record{
			Seq:        uint64(i + 1),
			Price:      *price,
			Quantity:   1,
			Instrument: code,
		}

		// With no spread and unit quantity the log alternates sides, so every
		// Sell fills the Buy before it and nothing rests at the end.
		if *spread == 0 && *maxQty == 1 {
			r.Side = protocol.SideBuy
			if i%2 == 1 {
				r.Side = protocol.SideSell
			}
		} else {
			r.Side = protocol.SideBuy
			if rng.Intn(2) == 1 {
				r.Side = protocol.SideSell
			}
			if *spread > 0 {
				r.Price = *price - *spread + rng.Uint64()%(2*(*spread)+1)
			}
			r.Quantity = 1 + rng.Uint64()%*maxQty
		}

		if r.Side == protocol.SideBuy {
			buys++
		} else {
			sells++
		}

		protocol.PutRecord(rec, &r)
		if _, err := w.Write(rec); err != nil {
			logger.Error("write log failed", "error", err)
			os.Exit(1)
		}
	}

	if err := w.Flush(); err != nil {
		logger.Error("flush log failed", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		logger.Error("close log failed", "error", err)
		os.Exit(1)
	}

	logger.Info("order log written", "path", *out, "records", *n, "buys", buys, "sells", sells)
}
