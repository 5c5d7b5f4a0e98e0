package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	match "github.com/0x5487/orderloop"
	"github.com/0x5487/orderloop/harness"
	"github.com/0x5487/orderloop/thread"
	"github.com/0x5487/orderloop/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	def := harness.DefaultConfig()

	logPath := flag.String("log", def.LogPath, "order log to replay")
	addr := flag.String("addr", def.Addr, "UDP address of the receiver")
	capacity := flag.Int("capacity", def.Capacity, "send channel capacity in bytes")
	sendDelay := flag.Duration("send-delay", def.SendDelay, "pause before every datagram write")
	kind := flag.String("transport", string(def.Transport), "datagram transport: udp or nats")
	natsURL := flag.String("nats-url", def.NATSURL, "NATS server URL")
	natsSubject := flag.String("nats-subject", def.NATSSubject, "NATS subject carrying datagrams")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	timeout := flag.Duration("timeout", 0, "give up after this long (0 waits forever)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <instrument>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	match.SetLogger(logger)
	thread.SetLogger(logger)
	transport.SetLogger(logger)
	harness.SetLogger(logger)

	h := harness.New(
		harness.WithLogPath(*logPath),
		harness.WithInstrument(flag.Arg(0)),
		harness.WithAddr(*addr),
		harness.WithCapacity(*capacity),
		harness.WithSendDelay(*sendDelay),
		harness.WithTransport(transport.Kind(*kind)),
		harness.WithNATS(*natsURL, *natsSubject),
		harness.WithMetricsAddr(*metricsAddr),
		harness.WithTimeout(*timeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := h.Run(ctx)
	if report != nil {
		_, _ = report.WriteTo(os.Stdout)
	}
	if err != nil {
		if errors.Is(err, harness.ErrMissingInstrument) {
			flag.Usage()
		}
		logger.Error("harness failed", "run_id", h.RunID(), "error", err)
		return 1
	}
	return 0
}
