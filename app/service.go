// Package app wires the measurement pipeline, the dispatch engine and the
// transports into a runnable router service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/pvrouter/config"
	"github.com/kilianp07/pvrouter/core/acquisition"
	"github.com/kilianp07/pvrouter/core/dispatch"
	"github.com/kilianp07/pvrouter/core/events"
	coremetrics "github.com/kilianp07/pvrouter/core/metrics"
	"github.com/kilianp07/pvrouter/core/model"
	"github.com/kilianp07/pvrouter/core/ports"
	"github.com/kilianp07/pvrouter/core/radio"
	"github.com/kilianp07/pvrouter/infra/logger"
	"github.com/kilianp07/pvrouter/infra/metrics"
	"github.com/kilianp07/pvrouter/infra/mqtt"
	"github.com/kilianp07/pvrouter/internal/eventbus"
)

// pollInterval is the main-loop cadence for checking the period handoff and
// pending overrides. It only needs to stay well below the period length.
const pollInterval = 5 * time.Millisecond

// Service runs the two execution contexts of the router: the sampling
// goroutine (the interrupt analogue, running filter and accumulation) and
// the cooperative main loop (smoothing, dispatch and I/O). They share state
// only through the period handoff.
type Service struct {
	cfg    *config.Config
	source acquisition.SampleSource
	acq    *acquisition.Engine
	engine *dispatch.Engine
	hand   acquisition.PeriodHandoff

	sender radio.Sender
	out    ports.PortWriter
	sink   coremetrics.Sink
	bus    *eventbus.Bus
	log    logger.Logger

	override   chan uint8
	remoteHeld bool
}

// New creates a Service with transports built from the configuration: an
// MQTT sender when remote loads are configured and a logging port writer for
// the local outputs.
func New(cfg *config.Config, src acquisition.SampleSource) (*Service, error) {
	var sender radio.Sender = radio.NopSender{}
	if len(cfg.Dispatch.Loads) > cfg.Dispatch.LocalLoads {
		s, err := mqtt.NewPahoSender(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt sender: %w", err)
		}
		sender = s
	}
	return NewWithTransport(cfg, src, sender, ports.NewLogWriter(logger.New("ports")))
}

// NewWithTransport creates a Service with explicit transports.
func NewWithTransport(cfg *config.Config, src acquisition.SampleSource, sender radio.Sender, out ports.PortWriter) (*Service, error) {
	logg := logger.New("service")
	bus := eventbus.New()

	acq, err := acquisition.NewEngine(cfg.Sampling)
	if err != nil {
		return nil, err
	}
	engine, err := dispatch.NewEngine(cfg.Dispatch, logger.New("dispatch"), bus)
	if err != nil {
		return nil, err
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{
		cfg:      cfg,
		source:   src,
		acq:      acq,
		engine:   engine,
		sender:   sender,
		out:      out,
		sink:     sink,
		bus:      bus,
		log:      logg,
		override: make(chan uint8, 8),
	}
	svc.banner()
	return svc, nil
}

// RequestOverride queues externally requested forced-on bits, one bit per
// load. The engine consumes them on the next dispatch tick.
func (s *Service) RequestOverride(mask uint8) {
	select {
	case s.override <- mask:
	default:
		s.log.Warnf("override queue full, dropping mask %#08b", mask)
	}
}

// Run starts both execution contexts and blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	go s.sample(ctx)
	s.loop(ctx)
	return nil
}

// sample is the interrupt analogue: a tight loop consuming sample pairs and
// posting period snapshots. The source owns the pacing; the loop itself
// never blocks.
func (s *Service) sample(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		rawV, rawI := s.source.Next()
		if res, ok := s.acq.ProcessPair(rawV, rawI); ok {
			if !s.hand.Publish(res) {
				s.log.Debugf("period snapshot dropped, consumer behind")
			}
		}
	}
}

// loop is the cooperative main loop: poll for a period snapshot, smooth it,
// run one dispatch tick and push the outputs.
func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var ovr model.Bitmask
	for {
		select {
		case <-ctx.Done():
			return
		case mask := <-s.override:
			ovr |= model.Bitmask(mask)
		case <-ticker.C:
			res, ok := s.hand.Poll()
			if !ok {
				continue
			}
			smoothed := s.engine.UpdateAverage(res.AveragePower)
			mask := s.engine.Tick(smoothed, &ovr)
			s.apply(mask)
			s.bus.Publish(events.PeriodEvent{Result: res, Smoothed: smoothed})
			if err := s.sink.RecordLoadStates(mask, s.cfg.Dispatch.Loads); err != nil {
				s.log.Errorf("record load states: %v", err)
			}
		}
	}
}

// apply pushes the decision to the local ports and the radio link. The
// remote byte is re-sent every tick so the receiver's failsafe timer keeps
// getting fed even when nothing changed.
func (s *Service) apply(mask model.Bitmask) {
	local, remote := mask.Split(s.cfg.Dispatch.LocalLoads)
	if err := s.out.Write(local); err != nil {
		s.log.Errorf("port write: %v", err)
	}
	if len(s.cfg.Dispatch.Loads) == s.cfg.Dispatch.LocalLoads {
		return
	}
	if err := s.sender.SendLoadStates(remote); err != nil {
		if !s.remoteHeld {
			s.remoteHeld = true
			s.log.Errorf("radio send: %v", err)
		}
		return
	}
	s.remoteHeld = false
}

// banner logs the dispatch ladder at startup.
func (s *Service) banner() {
	s.log.Infof("router: %d loads (%d local), settle=%d ticks, ewma 1/%d",
		len(s.cfg.Dispatch.Loads), s.cfg.Dispatch.LocalLoads,
		s.cfg.Dispatch.SettleTicks, s.cfg.Dispatch.EWMADivisor)
	for i, l := range s.cfg.Dispatch.Loads {
		s.log.Infof("  load %d %s: surplus=%d import=%d min_on=%d min_off=%d",
			i, l.Name, l.SurplusThreshold, l.ImportThreshold, l.MinOnTicks, l.MinOffTicks)
	}
}

// Close releases the transports and the event bus.
func (s *Service) Close() error {
	err := s.sender.Close()
	s.bus.Close()
	return err
}
