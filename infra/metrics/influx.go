package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/kilianp07/carheater/infra/logger"
)

// InfluxConfig holds the connection settings of the influx sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes schedule and heater events to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink if the
// health check fails, so an unreachable database never blocks scheduling.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
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

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSchedule writes a heating_schedule point. The mean temperature field
// is omitted when the forecast window was empty.
func (s *InfluxSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	p := write.NewPointWithMeasurement("heating_schedule").
		AddTag("ready_time", ev.ReadyTime).
		AddTag("enabled", strconv.FormatBool(ev.Enabled)).
		AddField("duration_minutes", ev.DurationMinutes).
		AddField("samples", ev.Samples).
		AddField("armed", ev.Armed).
		SetTime(ev.Time)
	if !math.IsNaN(ev.MeanTemperature) {
		p.AddField("mean_temperature", round3(ev.MeanTemperature))
	}
	if !ev.NextStart.IsZero() {
		p.AddField("next_start", ev.NextStart.Unix())
	}
	return s.write(p)
}

func (s *InfluxSink) RecordHeaterAction(ev coremetrics.HeaterActionEvent) error {
	p := write.NewPointWithMeasurement("heater_action").
		AddTag("action", ev.Action).
		AddTag("reason", ev.Reason).
		AddField("success", ev.Err == "").
		AddField("latency_ms", ev.Latency.Milliseconds()).
		SetTime(ev.Time)
	if ev.Err != "" {
		p.AddField("error", ev.Err)
	}
	return s.write(p)
}

func (s *InfluxSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	p := write.NewPointWithMeasurement("forecast_batch").
		AddField("samples", ev.Samples).
		SetTime(ev.FetchedAt)
	if !ev.LastAt.IsZero() {
		p.AddField("horizon_hours", round3(ev.LastAt.Sub(ev.FetchedAt).Hours()))
	}
	return s.write(p)
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
