package app

import (
	"context"
	"encoding/json"
	"time"

	apiheater "github.com/kilianp07/carheater/api/heater"
	"github.com/kilianp07/carheater/config"
	coremqtt "github.com/kilianp07/carheater/core/mqtt"
	"github.com/kilianp07/carheater/core/scheduler"
	"github.com/kilianp07/carheater/infra/logger"
)

// statusForwarder publishes scheduler snapshots as retained MQTT messages in
// the same shape as GET /heater.
type statusForwarder struct {
	pub      coremqtt.StatusPublisher
	topic    string
	interval time.Duration
	now      func() time.Time
	log      logger.Logger
}

func newStatusForwarder(pub coremqtt.StatusPublisher, cfg config.StatusConfig, now func() time.Time) *statusForwarder {
	return &statusForwarder{
		pub:      pub,
		topic:    cfg.Topic,
		interval: time.Duration(cfg.IntervalSeconds) * time.Second,
		now:      now,
		log:      logger.New("status"),
	}
}

func (f *statusForwarder) run(ctx context.Context, sub <-chan scheduler.Status) {
	var tick <-chan time.Time
	if f.interval > 0 {
		t := time.NewTicker(f.interval)
		defer t.Stop()
		tick = t.C
	}
	var last *scheduler.Status
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-sub:
			if !ok {
				return
			}
			last = &st
			f.publish(st)
		case <-tick:
			if last != nil {
				f.publish(*last)
			}
		}
	}
}

func (f *statusForwarder) publish(st scheduler.Status) {
	payload, err := json.Marshal(apiheater.NewResponse(st, f.now()))
	if err != nil {
		f.log.Errorf("encode status: %v", err)
		return
	}
	if err := f.pub.PublishStatus(f.topic, payload); err != nil {
		f.log.Warnf("publish status: %v", err)
	}
}
