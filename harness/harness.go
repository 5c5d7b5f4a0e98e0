package harness

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	match "github.com/0x5487/orderloop"
	"github.com/0x5487/orderloop/structure"
	"github.com/0x5487/orderloop/thread"
	"github.com/0x5487/orderloop/transport"
	"github.com/rs/xid"
)

// Role names of a run.
const (
	RoleSend   = "io-send"
	RolePoll   = "io"
	RoleLoader = "loader"
)

// Harness replays an order log through the send pipeline, the datagram
// transport and the receive pipeline into a matching engine, and measures the
// round trip.
type Harness struct {
	cfg   Config
	runID xid.ID
}

// New creates a Harness from options applied on top of DefaultConfig.
func New(opts ...Option) *Harness {
	return NewWithConfig(NewConfig(opts...))
}

// NewWithConfig creates a Harness from a complete Config.
func NewWithConfig(cfg Config) *Harness {
	return &Harness{
		cfg:   cfg,
		runID: xid.New(),
	}
}

// RunID identifies the run in logs and metrics.
func (h *Harness) RunID() string {
	return h.runID.String()
}

// Config returns the run settings.
func (h *Harness) Config() Config {
	return h.cfg
}

// pipeline holds everything a run wires together.
type pipeline struct {
	engine   *match.MatchingEngine
	depth    *match.DepthView
	counter  *Counter
	metrics  *Metrics
	ch       *structure.ByteChannel
	sender   *transport.Sender
	receiver *transport.Receiver
	loader   *Loader
	sendExec *thread.TaskQueue
	poller   *thread.Poller
	loadExec *thread.TaskQueue

	recvConn transport.PacketConn
	sendConn transport.PacketConn
}

// Run performs one run on the calling goroutine, which becomes the control
// role and stays locked to its OS thread until Run returns.
//
// Run returns when every expected record was received, when ctx is done, when
// the configured timeout fires or when the log cannot be read. Every role is
// stopped and joined before it returns. A run that ends before completion
// returns its partial report together with ErrIncomplete.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	reg := thread.NewRegistry()
	reg.BindControl()
	defer runtime.UnlockOSThread()

	log := logger.With("run_id", h.RunID())

	fail := func(err error) (*Report, error) {
		log.Error("run aborted", "error", err)
		reg.StopAll()
		_ = reg.JoinAll()
		return nil, err
	}

	if err := h.cfg.Validate(); err != nil {
		return fail(err)
	}

	info, err := StatLog(h.cfg.LogPath)
	if err != nil {
		return fail(err)
	}
	if info.Trailing > 0 {
		log.Warn("order log size is not a multiple of the record size",
			"path", info.Path, "size", info.Size, "trailing", info.Trailing)
	}

	p, err := h.build(reg, info)
	if err != nil {
		return fail(err)
	}
	defer p.close()

	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()
	if h.cfg.MetricsAddr != "" {
		if _, err := p.metrics.Serve(serveCtx, h.cfg.MetricsAddr); err != nil {
			log.Warn("metrics endpoint unavailable", "addr", h.cfg.MetricsAddr, "error", err)
		}
	}

	log.Info("run started",
		"engine_version", match.EngineVersion,
		"instrument", h.cfg.Instrument,
		"transport", string(h.cfg.Transport),
		"records", info.Records,
		"log", info.Path,
	)

	start := time.Now()
	loadDone := make(chan error, 1)
	p.loadExec.AddTask(thread.TaskFunc(func() {
		loadDone <- p.loader.LoadFile(h.cfg.LogPath)
	}))

	var timeout <-chan time.Time
	if h.cfg.Timeout > 0 {
		t := time.NewTimer(h.cfg.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	var (
		completed bool
		runErr    error
		loaded    <-chan error = loadDone
	)
wait:
	for {
		select {
		case <-p.counter.Done():
			completed = true
			break wait
		case err := <-loaded:
			if err != nil {
				runErr = err
				break wait
			}
			loaded = nil
			log.Info("order log loaded", "records", p.loader.Records(), "bytes", p.loader.Bytes())
		case <-ctx.Done():
			log.Warn("run interrupted", "error", ctx.Err())
			break wait
		case <-timeout:
			log.Warn("run timed out", "timeout", h.cfg.Timeout.String())
			break wait
		}
	}
	elapsed := time.Since(start)

	reg.StopAll()
	// Unblocks a loader waiting for channel space.
	p.ch.Close()
	if err := reg.JoinAll(); err != nil {
		return nil, err
	}

	report := h.report(p, info, completed, elapsed)
	report.Log(log)

	if runErr != nil {
		return report, runErr
	}
	if !completed {
		return report, ErrIncomplete
	}
	return report, nil
}

func (h *Harness) build(reg *thread.Registry, info LogInfo) (*pipeline, error) {
	p := &pipeline{
		engine:  match.NewMatchingEngine(),
		depth:   match.NewDepthView(),
		metrics: NewMetrics(h.RunID(), h.cfg.Instrument),
	}
	p.counter = NewCounter(info.Records, p.depth, p.metrics)

	p.engine.AddOrderDelegate(p.counter)
	p.engine.AddTradeDelegate(p.counter)
	for _, side := range []match.Side{match.Buy, match.Sell} {
		if _, err := p.engine.SetLedgerDelegate(side, p.counter); err != nil {
			return nil, err
		}
	}

	if err := p.open(h.cfg); err != nil {
		return nil, err
	}

	p.ch = structure.NewByteChannel(h.cfg.Capacity)
	p.receiver = transport.NewReceiver(p.recvConn, p.engine)

	p.poller = reg.NewPoller(RolePoll, h.cfg.PollInterval)
	p.poller.AddSource(p.receiver)

	p.sendExec = reg.NewTaskQueue(RoleSend)
	p.sender = transport.NewSender(p.ch, p.sendExec, p.sendConn, transport.WithSendDelay(h.cfg.SendDelay))

	p.loadExec = reg.NewTaskQueue(RoleLoader)
	p.loader = NewLoader(p.ch, p.sender)

	p.registerMetrics()
	return p, nil
}

// open creates the receiving end first so that nothing sent is lost to a
// missing listener.
func (p *pipeline) open(cfg Config) error {
	switch cfg.Transport {
	case transport.KindNATS:
		recv, err := transport.ListenNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return err
		}
		send, err := transport.DialNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			_ = recv.Close()
			return err
		}
		p.recvConn, p.sendConn = recv, send
	case transport.KindUDP:
		recv, err := transport.ListenUDP(cfg.Addr)
		if err != nil {
			return err
		}
		// Dial the bound address so that port 0 works.
		send, err := transport.DialUDP(recv.LocalAddr().String())
		if err != nil {
			_ = recv.Close()
			return err
		}
		p.recvConn, p.sendConn = recv, send
	default:
		return fmt.Errorf("%w: %q", transport.ErrUnknownKind, cfg.Transport)
	}
	return nil
}

func (p *pipeline) close() {
	var errs []error
	if p.sendConn != nil {
		errs = append(errs, p.sendConn.Close())
	}
	if p.recvConn != nil {
		errs = append(errs, p.recvConn.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("close transport failed", "error", err)
	}
}

func (p *pipeline) registerMetrics() {
	m := p.metrics
	m.RegisterCounter("bytes_sent_total", "Datagram bytes written by the sender",
		func() float64 { return float64(p.sender.BytesSent()) })
	m.RegisterCounter("datagrams_sent_total", "Datagrams written by the sender",
		func() float64 { return float64(p.sender.DatagramsSent()) })
	m.RegisterCounter("send_errors_total", "Datagram writes that failed and were retried",
		func() float64 { return float64(p.sender.SendErrors()) })
	m.RegisterCounter("bytes_received_total", "Datagram bytes read by the receiver",
		func() float64 { return float64(p.receiver.BytesReceived()) })
	m.RegisterCounter("datagrams_received_total", "Datagrams read by the receiver",
		func() float64 { return float64(p.receiver.DatagramsReceived()) })
	m.RegisterCounter("datagrams_dropped_total", "Datagrams dropped by integrity checks",
		func() float64 { return float64(p.receiver.DatagramsDropped()) })
	m.RegisterCounter("records_dropped_total", "Records dropped by integrity checks",
		func() float64 { return float64(p.receiver.RecordsDropped()) })
	m.RegisterGauge("send_channel_bytes", "Bytes buffered in the send channel",
		func() float64 { return float64(p.ch.CountAsWriter()) })
}

func (h *Harness) report(p *pipeline, info LogInfo, completed bool, elapsed time.Duration) *Report {
	stats := p.engine.Stats()
	volume, notional := p.counter.Volume()

	report := &Report{
		RunID:      h.RunID(),
		Instrument: h.cfg.Instrument,
		Transport:  string(h.cfg.Transport),
		Completed:  completed,
		Elapsed:    elapsed,

		RecordsExpected: info.Records,
		RecordsLoaded:   p.loader.Records(),
		RecordsSent:     p.sender.RecordsSent(),
		RecordsReceived: p.receiver.RecordsReceived(),
		RecordsDropped:  p.receiver.RecordsDropped(),

		BytesSent:         p.sender.BytesSent(),
		BytesReceived:     p.receiver.BytesReceived(),
		DatagramsSent:     p.sender.DatagramsSent(),
		DatagramsReceived: p.receiver.DatagramsReceived(),
		DatagramsDropped:  p.receiver.DatagramsDropped(),
		SendErrors:        p.sender.SendErrors(),

		OrdersReceived:  p.counter.Received(),
		OrdersProcessed: p.counter.Processed(),
		OrdersRested:    p.counter.Rested(),
		Trades:          p.counter.Trades(),
		TradeVolume:     volume,
		TradeNotional:   notional,

		RestingBids: int(stats.BidOrderCount),
		RestingAsks: int(stats.AskOrderCount),
		BidLevels:   stats.BidDepthCount,
		AskLevels:   stats.AskDepthCount,
	}
	if levels := p.depth.Levels(match.Buy, 1); len(levels) > 0 {
		report.BestBid = levels[0].Price
	}
	if levels := p.depth.Levels(match.Sell, 1); len(levels) > 0 {
		report.BestAsk = levels[0].Price
	}
	return report
}
