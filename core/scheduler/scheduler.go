package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/carheater/core/forecast"
	"github.com/kilianp07/carheater/core/heater"
	"github.com/kilianp07/carheater/core/heating"
	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/kilianp07/carheater/core/monitoring"
	"github.com/kilianp07/carheater/infra/logger"
	"github.com/kilianp07/carheater/internal/eventbus"
)

// Deps are the collaborators of a Scheduler. Store, Triggers and Heater are
// required.
type Deps struct {
	Store     Store
	Triggers  Triggers
	Heater    heater.Control
	Forecasts *forecast.Cache
	Sink      coremetrics.MetricsSink
	// Statuses receives a snapshot after every change. Optional.
	Statuses *eventbus.TypedBus[Status]
	Logger   logger.Logger
	Now      func() time.Time
}

type triggerKind string

const (
	triggerStart triggerKind = "start_trigger"
	triggerStop  triggerKind = "stop_trigger"
)

// Scheduler keeps the heater triggers in line with the persisted state and
// the latest forecast.
type Scheduler struct {
	cfg       Config
	params    heating.DurationParams
	store     Store
	triggers  Triggers
	heater    heater.Control
	forecasts *forecast.Cache
	sink      coremetrics.MetricsSink
	statuses  *eventbus.TypedBus[Status]
	log       logger.Logger
	now       func() time.Time

	mu         sync.Mutex
	ready      bool
	state      heating.ScheduleState
	estimate   heating.Estimate
	updatedAt  time.Time
	armed      bool
	startID    TriggerID
	stopID     TriggerID
	generation uint64
	heaterOn   bool
}

func New(cfg Config, d Deps) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler config: %w", err)
	}
	if d.Store == nil || d.Triggers == nil || d.Heater == nil {
		return nil, errors.New("scheduler requires a store, triggers and a heater")
	}
	if d.Forecasts == nil {
		d.Forecasts = forecast.NewCache()
	}
	if d.Sink == nil {
		d.Sink = coremetrics.NopSink{}
	}
	if d.Logger == nil {
		d.Logger = logger.NopLogger{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Scheduler{
		cfg:       cfg,
		params:    cfg.DurationParams(),
		store:     d.Store,
		triggers:  d.Triggers,
		heater:    d.Heater,
		forecasts: d.Forecasts,
		sink:      d.Sink,
		statuses:  d.Statuses,
		log:       d.Logger,
		now:       d.Now,
		state:     heating.DefaultScheduleState(),
	}, nil
}

// Load restores the persisted state, falling back to the defaults when none
// exists or it cannot be read.
func (s *Scheduler) Load(ctx context.Context) heating.ScheduleState {
	st, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, ErrStateNotFound):
		st = heating.DefaultScheduleState()
		s.log.Infof("no persisted state, using ready time %s, timer disabled", st.ReadyTime)
	case err != nil:
		st = heating.DefaultScheduleState()
		s.log.Errorf("load persisted state: %v; using defaults", err)
		monitoring.CaptureException(err, map[string]string{"module": "scheduler", "op": "load"})
	default:
		s.log.Infof("loaded state: ready time %s, timer enabled %t", st.ReadyTime, st.Enabled)
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return st
}

// Run loads the persisted state and then recomputes the schedule for every
// forecast batch received until ctx is done or batches is closed. Nothing is
// armed before the first non-empty batch.
func (s *Scheduler) Run(ctx context.Context, batches <-chan forecast.Batch) error {
	s.Load(ctx)
	defer s.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-batches:
			if !ok {
				return nil
			}
			if !s.forecasts.Update(b) {
				s.log.Warnf("ignoring empty forecast batch fetched at %s", b.FetchedAt.Format(time.RFC3339))
				continue
			}
			if _, err := s.Refresh(ctx); err != nil {
				s.log.Errorf("refresh after forecast update: %v", err)
			}
		}
	}
}

// Refresh recomputes the heating duration and rearms the triggers for the
// current state without persisting it.
func (s *Scheduler) Refresh(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forecasts.Latest(); !ok {
		return Status{}, ErrNotReady
	}
	return s.applyLocked(ctx, s.state, false)
}

// Reconfigure validates, persists and applies a new ready time and enabled
// flag. On ErrPersistence the previous schedule stays in effect. On
// ErrTriggerRearm the new state is kept but nothing is armed.
func (s *Scheduler) Reconfigure(ctx context.Context, readyTime string, enabled bool) (Status, error) {
	next, err := heating.NewScheduleState(readyTime, enabled)
	if err != nil {
		s.recordReconfigure("invalid")
		return Status{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forecasts.Latest(); !ok {
		s.recordReconfigure("not_ready")
		return Status{}, ErrNotReady
	}
	return s.applyLocked(ctx, next, true)
}

// Status returns the current snapshot, or ErrNotReady before the first
// forecast has been applied.
func (s *Scheduler) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Status{}, ErrNotReady
	}
	return s.statusLocked(s.now()), nil
}

// Stop disarms all triggers and switches the heater off if the scheduler
// had switched it on.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.disarmLocked()
	if s.heaterOn {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.actionTimeout())
		defer cancel()
		s.switchLocked(ctx, false, "shutdown")
	}
}

func (s *Scheduler) applyLocked(ctx context.Context, next heating.ScheduleState, persist bool) (Status, error) {
	now := s.now().UTC()
	if persist {
		if err := s.store.Save(ctx, next); err != nil {
			s.log.Errorf("persist state (ready %s, enabled %t): %v", next.ReadyTime, next.Enabled, err)
			s.recordReconfigure("persistence")
			return s.statusLocked(now), fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	s.state = next

	batch, _ := s.forecasts.Latest()
	ready := heating.NextReadyInstant(next.ReadyTime, now)
	est := s.params.Estimate(ready, batch.Samples)
	if est.Samples == 0 {
		s.log.Warnf("no forecast samples between %s and %s, heating duration 0",
			est.WindowStart.Format(time.RFC3339), est.WindowEnd.Format(time.RFC3339))
	} else {
		s.log.Infof("using avg temp %.1f°C from %d forecasts, heating %d minutes", est.MeanTemperature, est.Samples, est.Minutes)
	}
	s.estimate = est
	s.updatedAt = now
	s.ready = true

	// Heater calls must finish even if the caller's request goes away.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.actionTimeout())
	defer cancel()

	if err := s.rearmLocked(now); err != nil {
		s.log.Errorf("%v; schedule left disarmed", err)
		monitoring.CaptureException(err, map[string]string{"module": "scheduler", "op": "rearm"})
		s.switchLocked(actx, false, "rearm_failure")
		s.recordReconfigure("rearm")
		st := s.statusLocked(now)
		s.recordSchedule(st, now)
		s.publishLocked(st)
		return st, err
	}

	switch {
	case next.Enabled && heating.IsCurrentlyHeating(next.ReadyTime, est.Minutes, now):
		s.log.Infof("inside heating window for %s, starting heater now", next.ReadyTime)
		s.switchLocked(actx, true, "catch_up")
	case s.heaterOn:
		s.switchLocked(actx, false, "window_left")
	}

	st := s.statusLocked(now)
	if persist {
		s.recordReconfigure("ok")
	}
	s.recordSchedule(st, now)
	s.publishLocked(st)
	if st.Enabled {
		s.log.Infof("heater armed: start %s, ready %s", st.NextStart.Format(time.RFC3339), st.NextReady.Format(time.RFC3339))
	} else {
		s.log.Infof("timer disabled, ready time %s", st.ReadyTime)
	}
	return st, nil
}

// rearmLocked cancels the current triggers, bumps the generation and arms
// new ones if the timer is enabled.
func (s *Scheduler) rearmLocked(now time.Time) error {
	s.generation++
	gen := s.generation
	s.disarmLocked()
	if !s.state.Enabled {
		return nil
	}
	startAt := heating.TimeOfDayOf(heating.NextHeatingStartInstant(s.state.ReadyTime, s.estimate.Minutes, now))
	stopAt := s.state.ReadyTime
	var err error
	for attempt := 0; attempt <= s.cfg.RearmRetries; attempt++ {
		if err = s.armLocked(gen, startAt, stopAt); err == nil {
			s.armed = true
			return nil
		}
		s.log.Warnf("arming triggers, attempt %d/%d: %v", attempt+1, s.cfg.RearmRetries+1, err)
	}
	return fmt.Errorf("%w: %v", ErrTriggerRearm, err)
}

func (s *Scheduler) armLocked(gen uint64, startAt, stopAt heating.TimeOfDay) error {
	startID, err := s.triggers.Daily(startAt, func() { s.fire(gen, triggerStart, startAt) })
	if err != nil {
		return fmt.Errorf("start trigger at %s: %w", startAt, err)
	}
	stopID, err := s.triggers.Daily(stopAt, func() { s.fire(gen, triggerStop, stopAt) })
	if err != nil {
		s.triggers.Cancel(startID)
		return fmt.Errorf("stop trigger at %s: %w", stopAt, err)
	}
	s.startID, s.stopID = startID, stopID
	return nil
}

func (s *Scheduler) disarmLocked() {
	if !s.armed {
		return
	}
	s.triggers.Cancel(s.startID)
	s.triggers.Cancel(s.stopID)
	s.armed = false
}

// fire runs a trigger armed for generation gen at time of day at. Triggers
// from an older generation are ignored, except a stop that lands on the
// current ready minute: a rearm during that minute schedules its own stop
// for tomorrow, so the superseded one is the only stop left for today.
func (s *Scheduler) fire(gen uint64, kind triggerKind, at heating.TimeOfDay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		if !s.supersededStopDueLocked(kind, at) {
			s.log.Debugf("ignoring stale %s at %s (generation %d, current %d)", kind, at, gen, s.generation)
			return
		}
		s.log.Debugf("honouring %s at %s from generation %d", kind, at, gen)
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.actionTimeout())
	defer cancel()

	switch kind {
	case triggerStart:
		if s.estimate.Minutes == 0 {
			s.log.Infof("heating duration is 0, not starting heater")
			return
		}
		s.log.Infof("starting heater for %d minutes, ready at %s", s.estimate.Minutes, s.state.ReadyTime)
		s.switchLocked(ctx, true, string(kind))
	case triggerStop:
		s.log.Infof("ready time %s reached, stopping heater", s.state.ReadyTime)
		s.switchLocked(ctx, false, string(kind))
	}
	s.publishLocked(s.statusLocked(s.now()))
}

func (s *Scheduler) supersededStopDueLocked(kind triggerKind, at heating.TimeOfDay) bool {
	return kind == triggerStop &&
		s.state.Enabled &&
		at == s.state.ReadyTime &&
		heating.TimeOfDayOf(s.now()) == at
}

func (s *Scheduler) switchLocked(ctx context.Context, on bool, reason string) {
	action := "off"
	if on {
		action = "on"
	}
	started := time.Now()
	var err error
	if on {
		err = s.heater.TurnOn(ctx)
	} else {
		err = s.heater.TurnOff(ctx)
	}
	ev := coremetrics.HeaterActionEvent{Action: action, Reason: reason, Latency: time.Since(started), Time: s.now()}
	if err != nil {
		ev.Err = err.Error()
		s.log.Errorf("heater %s (%s) failed: %v", action, reason, err)
		monitoring.CaptureException(err, map[string]string{"module": "scheduler", "action": action, "reason": reason})
	} else {
		s.heaterOn = on
		s.log.Infof("heater %s (%s)", action, reason)
	}
	if rec, ok := s.sink.(coremetrics.HeaterActionRecorder); ok {
		if rerr := rec.RecordHeaterAction(ev); rerr != nil {
			s.log.Warnf("record heater action: %v", rerr)
		}
	}
}

func (s *Scheduler) statusLocked(now time.Time) Status {
	now = now.UTC()
	minutes := s.estimate.Minutes
	return Status{
		ReadyTime:              s.state.ReadyTime,
		Enabled:                s.state.Enabled,
		HeatingDurationMinutes: minutes,
		Armed:                  s.armed,
		Heating:                s.state.Enabled && heating.IsCurrentlyHeating(s.state.ReadyTime, minutes, now),
		HeaterOn:               s.heaterOn,
		NextStart:              heating.NextHeatingStartInstant(s.state.ReadyTime, minutes, now),
		NextReady:              heating.NextReadyInstant(s.state.ReadyTime, now),
		UpdatedAt:              s.updatedAt,
	}
}

func (s *Scheduler) publishLocked(st Status) {
	if s.statuses != nil {
		s.statuses.Publish(st)
	}
}

func (s *Scheduler) recordSchedule(st Status, now time.Time) {
	err := s.sink.RecordSchedule(coremetrics.ScheduleEvent{
		ReadyTime:       st.ReadyTime.String(),
		Enabled:         st.Enabled,
		Armed:           st.Armed,
		DurationMinutes: st.HeatingDurationMinutes,
		MeanTemperature: s.estimate.MeanTemperature,
		Samples:         s.estimate.Samples,
		NextStart:       st.NextStart,
		NextReady:       st.NextReady,
		Time:            now,
	})
	if err != nil {
		s.log.Warnf("record schedule: %v", err)
	}
}

func (s *Scheduler) recordReconfigure(result string) {
	if rec, ok := s.sink.(coremetrics.ReconfigureRecorder); ok {
		if err := rec.RecordReconfigure(coremetrics.ReconfigureEvent{Result: result, Time: s.now()}); err != nil {
			s.log.Warnf("record reconfigure: %v", err)
		}
	}
}
