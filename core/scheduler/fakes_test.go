package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/carheater/core/forecast"
	"github.com/kilianp07/carheater/core/heating"
	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/kilianp07/carheater/infra/logger"
)

type fakeEntry struct {
	at heating.TimeOfDay
	fn func()
}

type fakeTriggers struct {
	mu     sync.Mutex
	next   TriggerID
	active map[TriggerID]fakeEntry
	// fail is the number of upcoming Daily calls that fail; -1 fails forever.
	fail  int
	calls int
}

func newFakeTriggers() *fakeTriggers {
	return &fakeTriggers{active: make(map[TriggerID]fakeEntry)}
}

func (f *fakeTriggers) Daily(at heating.TimeOfDay, fn func()) (TriggerID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != 0 {
		if f.fail > 0 {
			f.fail--
		}
		return 0, errors.New("no free cron slot")
	}
	f.next++
	f.active[f.next] = fakeEntry{at: at, fn: fn}
	return f.next, nil
}

func (f *fakeTriggers) Cancel(id TriggerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, id)
}

// times lists the armed times of day in order.
func (f *fakeTriggers) times() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.active {
		out = append(out, e.at.String())
	}
	sort.Strings(out)
	return out
}

func (f *fakeTriggers) fnAt(tod string) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.active {
		if e.at.String() == tod {
			return e.fn
		}
	}
	return nil
}

type fakeHeater struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (h *fakeHeater) TurnOn(context.Context) error  { return h.record("on") }
func (h *fakeHeater) TurnOff(context.Context) error { return h.record("off") }

func (h *fakeHeater) record(c string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
	return h.err
}

func (h *fakeHeater) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

type fakeStore struct {
	mu      sync.Mutex
	state   *heating.ScheduleState
	saveErr error
	loadErr error
	saves   int
}

func (s *fakeStore) Load(context.Context) (heating.ScheduleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return heating.ScheduleState{}, s.loadErr
	}
	if s.state == nil {
		return heating.ScheduleState{}, ErrStateNotFound
	}
	return *s.state, nil
}

func (s *fakeStore) Save(_ context.Context, st heating.ScheduleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.state = &st
	return nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// flatForecast returns hourly samples at temp covering a whole UTC day
// around day.
func flatForecast(day string, temp float64) forecast.Batch {
	start := mustTime(day + "T00:00:00Z").Add(-12 * time.Hour)
	samples := make([]forecast.Sample, 0, 60)
	for i := 0; i < 60; i++ {
		samples = append(samples, forecast.Sample{Temperature: temp, Timestamp: start.Add(time.Duration(i) * time.Hour)})
	}
	return forecast.Batch{Samples: samples, FetchedAt: start}
}

// failingSink accepts every recorder call and returns err.
type failingSink struct {
	err          error
	reconfigures []string
}

func (s *failingSink) RecordSchedule(coremetrics.ScheduleEvent) error { return s.err }

func (s *failingSink) RecordReconfigure(ev coremetrics.ReconfigureEvent) error {
	s.reconfigures = append(s.reconfigures, ev.Result)
	return s.err
}

type warnLogger struct {
	logger.NopLogger
	mu    sync.Mutex
	warns []string
}

func (l *warnLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}
