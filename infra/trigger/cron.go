// Package trigger arms daily UTC callbacks on robfig/cron.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/carheater/core/heating"
	"github.com/kilianp07/carheater/core/scheduler"
	"github.com/kilianp07/carheater/infra/logger"
	"github.com/robfig/cron/v3"
)

// Cron implements scheduler.Triggers. Jobs run on their own goroutine and a
// panicking job is recovered and logged.
type Cron struct {
	c   *cron.Cron
	log logger.Logger
}

func NewCron(log logger.Logger) *Cron {
	if log == nil {
		log = logger.NopLogger{}
	}
	cl := cronLogger{log: log}
	return &Cron{
		c: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		log: log,
	}
}

// DailySpec is the five-field cron expression firing at tod every day.
func DailySpec(tod heating.TimeOfDay) string {
	return fmt.Sprintf("%d %d * * *", tod.Minute, tod.Hour)
}

func (t *Cron) Start() { t.c.Start() }

// Stop halts the scheduler and returns a context done once running jobs
// have finished.
func (t *Cron) Stop() context.Context { return t.c.Stop() }

func (t *Cron) Daily(at heating.TimeOfDay, fn func()) (scheduler.TriggerID, error) {
	spec := DailySpec(at)
	id, err := t.c.AddFunc(spec, fn)
	if err != nil {
		return 0, fmt.Errorf("add cron entry %q: %w", spec, err)
	}
	t.log.Debugf("armed daily trigger %d at %s UTC", id, at)
	return scheduler.TriggerID(id), nil
}

func (t *Cron) Cancel(id scheduler.TriggerID) {
	t.c.Remove(cron.EntryID(id))
}

// NextAfter reports when id fires next after ts. It is zero for an unknown id.
func (t *Cron) NextAfter(id scheduler.TriggerID, ts time.Time) time.Time {
	e := t.c.Entry(cron.EntryID(id))
	if !e.Valid() {
		return time.Time{}
	}
	return e.Schedule.Next(ts)
}

// Len is the number of armed entries.
func (t *Cron) Len() int { return len(t.c.Entries()) }

type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, kv ...interface{}) {
	logger.Leveled{L: l.log}.Debug(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	logger.Leveled{L: l.log}.Error(fmt.Sprintf("%s: %v", msg, err), kv...)
}
