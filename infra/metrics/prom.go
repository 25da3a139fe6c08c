package metrics

import (
	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes the schedule as Prometheus gauges and counters.
type PromSink struct {
	duration  prometheus.Gauge
	enabled   prometheus.Gauge
	armed     prometheus.Gauge
	meanTemp  prometheus.Gauge
	nextStart prometheus.Gauge
	actions   *prometheus.CounterVec
	reconfig  *prometheus.CounterVec
	samples   prometheus.Gauge
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg. Collectors that already
// exist on reg are reused, so building a second sink is safe.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.duration, err = registerGauge(reg, "carheater_heating_duration_minutes", "Heating duration computed for the next ready time"); err != nil {
		return nil, err
	}
	if s.enabled, err = registerGauge(reg, "carheater_timer_enabled", "1 when the timer is enabled"); err != nil {
		return nil, err
	}
	if s.armed, err = registerGauge(reg, "carheater_triggers_armed", "1 when start and stop triggers are armed"); err != nil {
		return nil, err
	}
	if s.meanTemp, err = registerGauge(reg, "carheater_forecast_mean_temperature_celsius", "Mean forecast temperature in the window before the ready time"); err != nil {
		return nil, err
	}
	if s.nextStart, err = registerGauge(reg, "carheater_next_start_timestamp_seconds", "Unix time of the next heating start"); err != nil {
		return nil, err
	}
	if s.samples, err = registerGauge(reg, "carheater_forecast_samples", "Number of samples in the latest forecast batch"); err != nil {
		return nil, err
	}
	if s.actions, err = registerCounterVec(reg, "carheater_heater_actions_total", "Heater switch attempts", []string{"action", "reason", "result"}); err != nil {
		return nil, err
	}
	if s.reconfig, err = registerCounterVec(reg, "carheater_reconfigure_total", "Reconfigure calls by outcome", []string{"result"}); err != nil {
		return nil, err
	}
	return s, nil
}

func registerGauge(reg prometheus.Registerer, name, help string) (prometheus.Gauge, error) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge), nil
		}
		return nil, err
	}
	return g, nil
}

func registerCounterVec(reg prometheus.Registerer, name, help string, labels []string) (*prometheus.CounterVec, error) {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (s *PromSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	s.duration.Set(float64(ev.DurationMinutes))
	s.enabled.Set(boolGauge(ev.Enabled))
	s.armed.Set(boolGauge(ev.Armed))
	s.meanTemp.Set(ev.MeanTemperature)
	if ev.Enabled && !ev.NextStart.IsZero() {
		s.nextStart.Set(float64(ev.NextStart.Unix()))
	} else {
		s.nextStart.Set(0)
	}
	return nil
}

func (s *PromSink) RecordHeaterAction(ev coremetrics.HeaterActionEvent) error {
	result := "ok"
	if ev.Err != "" {
		result = "error"
	}
	s.actions.WithLabelValues(ev.Action, ev.Reason, result).Inc()
	return nil
}

func (s *PromSink) RecordReconfigure(ev coremetrics.ReconfigureEvent) error {
	s.reconfig.WithLabelValues(ev.Result).Inc()
	return nil
}

func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	s.samples.Set(float64(ev.Samples))
	return nil
}
