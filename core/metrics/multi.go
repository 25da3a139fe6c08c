package metrics

import "errors"

// MultiSink fans events out to several sinks. Every sink is called even when
// an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordSchedule(ev ScheduleEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordSchedule(ev))
	}
	return errors.Join(errs...)
}

// RecordHeaterAction forwards to sinks implementing HeaterActionRecorder.
func (m *MultiSink) RecordHeaterAction(ev HeaterActionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(HeaterActionRecorder); ok {
			errs = append(errs, rec.RecordHeaterAction(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordReconfigure(ev ReconfigureEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ReconfigureRecorder); ok {
			errs = append(errs, rec.RecordReconfigure(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordForecast(ev ForecastEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ForecastRecorder); ok {
			errs = append(errs, rec.RecordForecast(ev))
		}
	}
	return errors.Join(errs...)
}
