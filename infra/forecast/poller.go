package forecast

import (
	"context"
	"time"

	"github.com/kilianp07/carheater/core/forecast"
	"github.com/kilianp07/carheater/infra/logger"
	"github.com/kilianp07/carheater/internal/eventbus"
)

// Fetcher returns the current forecast.
type Fetcher interface {
	Fetch(ctx context.Context) (forecast.Batch, error)
}

// initialRetry is the first delay between startup fetch attempts.
const initialRetry = 5 * time.Second

// Poller fetches immediately and then on every interval, publishing each
// non-empty batch. Until the first batch arrives, failed fetches are retried
// with a doubling delay capped at the interval. After that they are retried
// on the next tick.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	retry    time.Duration
	bus      *eventbus.TypedBus[forecast.Batch]
	log      logger.Logger
}

func NewPoller(f Fetcher, interval time.Duration, bus *eventbus.TypedBus[forecast.Batch]) *Poller {
	return &Poller{
		fetcher:  f,
		interval: interval,
		retry:    initialRetry,
		bus:      bus,
		log:      logger.New("forecast_poller"),
	}
}

// Run blocks until ctx is canceled.
func (p *Poller) Run(ctx context.Context) {
	if !p.pollUntilFirstBatch(ctx) {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// pollUntilFirstBatch returns false if ctx is canceled before a batch is
// published.
func (p *Poller) pollUntilFirstBatch(ctx context.Context) bool {
	delay := min(p.retry, p.interval)
	for !p.poll(ctx) {
		p.log.Warnf("no forecast yet, retrying in %s", delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		delay = min(2*delay, p.interval)
	}
	return true
}

// poll reports whether a batch was published.
func (p *Poller) poll(ctx context.Context) bool {
	b, err := p.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Errorf("forecast fetch failed: %v", err)
		}
		return false
	}
	if len(b.Samples) == 0 {
		p.log.Warnf("forecast fetch returned no samples")
		return false
	}
	p.log.Infof("fetched %d forecast samples (%s .. %s)", len(b.Samples),
		b.Samples[0].Timestamp.Format(time.RFC3339), b.Samples[len(b.Samples)-1].Timestamp.Format(time.RFC3339))
	p.bus.Publish(b)
	return true
}
