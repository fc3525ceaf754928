package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/pvrouter/core/events"
	coremetrics "github.com/kilianp07/pvrouter/core/metrics"
	"github.com/kilianp07/pvrouter/core/model"
	"github.com/kilianp07/pvrouter/infra/logger"
)

// InfluxSink writes period telemetry to an InfluxDB instance, the software
// rendition of the original RF datalog.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPeriod writes one period point.
func (s *InfluxSink) RecordPeriod(res model.PeriodResult, smoothed int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("router_period").
		AddField("average_power", res.AveragePower).
		AddField("smoothed_power", smoothed).
		AddField("rms_voltage", res.RMSVoltage()).
		AddField("samples", int64(res.Samples)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLoadStates writes the output mask as one point.
func (s *InfluxSink) RecordLoadStates(mask model.Bitmask, loads []model.LoadSpec) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("router_loads").
		AddField("mask", int64(mask)).
		SetTime(time.Now())
	for i, l := range loads {
		on := int64(0)
		if mask.IsSet(i) {
			on = 1
		}
		p.AddField(l.Name, on)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTransition writes one switching event.
func (s *InfluxSink) RecordTransition(ev events.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("router_transition").
		AddTag("load", ev.Name).
		AddTag("on", strconv.FormatBool(ev.On)).
		AddField("index", int64(ev.Load)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLinkStatus writes the link state.
func (s *InfluxSink) RecordLinkStatus(up bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v := int64(0)
	if up {
		v = 1
	}
	p := write.NewPointWithMeasurement("router_link").
		AddField("up", v).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts the underlying client down.
func (s *InfluxSink) Close() { s.client.Close() }

var _ coremetrics.Sink = (*InfluxSink)(nil)
