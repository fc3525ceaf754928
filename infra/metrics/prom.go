package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/pvrouter/core/events"
	coremetrics "github.com/kilianp07/pvrouter/core/metrics"
	"github.com/kilianp07/pvrouter/core/model"
)

// PromSink exposes router telemetry as Prometheus metrics.
type PromSink struct {
	power       prometheus.Gauge
	smoothed    prometheus.Gauge
	rmsVoltage  prometheus.Gauge
	loadState   *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	linkUp      prometheus.Gauge
}

// NewPromSink registers router metrics on the default Prometheus registerer.
// The Prometheus server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		power: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "router_average_power",
			Help: "Average real power of the last period, relative units, positive = import",
		}),
		smoothed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "router_smoothed_power",
			Help: "Smoothed power fed to the dispatch engine",
		}),
		rmsVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "router_rms_voltage",
			Help: "RMS voltage of the last period, relative units",
		}),
		loadState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "router_load_state",
			Help: "Load state, 1 = energized",
		}, []string{"load"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_load_transitions_total",
			Help: "Total load switching events",
		}, []string{"load", "direction"}),
		linkUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "router_link_up",
			Help: "Remote radio link state, 1 = alive",
		}),
	}
	collectors := []prometheus.Collector{
		s.power, s.smoothed, s.rmsVoltage, s.loadState, s.transitions, s.linkUp,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordPeriod sets the power and voltage gauges.
func (s *PromSink) RecordPeriod(res model.PeriodResult, smoothed int64) error {
	s.power.Set(float64(res.AveragePower))
	s.smoothed.Set(float64(smoothed))
	s.rmsVoltage.Set(res.RMSVoltage())
	return nil
}

// RecordLoadStates sets the per-load state gauges.
func (s *PromSink) RecordLoadStates(mask model.Bitmask, loads []model.LoadSpec) error {
	for i, l := range loads {
		v := 0.0
		if mask.IsSet(i) {
			v = 1.0
		}
		s.loadState.WithLabelValues(l.Name).Set(v)
	}
	return nil
}

// RecordTransition counts a switching event.
func (s *PromSink) RecordTransition(ev events.TransitionEvent) error {
	direction := "off"
	if ev.On {
		direction = "on"
	}
	s.transitions.WithLabelValues(ev.Name, direction).Inc()
	return nil
}

// RecordLinkStatus sets the link gauge.
func (s *PromSink) RecordLinkStatus(up bool) error {
	if up {
		s.linkUp.Set(1)
	} else {
		s.linkUp.Set(0)
	}
	return nil
}

var _ coremetrics.Sink = (*PromSink)(nil)
