// Package app wires the configured components into the running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	apiheater "github.com/kilianp07/carheater/api/heater"
	"github.com/kilianp07/carheater/config"
	"github.com/kilianp07/carheater/core/forecast"
	coreheater "github.com/kilianp07/carheater/core/heater"
	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/kilianp07/carheater/core/monitoring"
	coremqtt "github.com/kilianp07/carheater/core/mqtt"
	"github.com/kilianp07/carheater/core/scheduler"
	infraforecast "github.com/kilianp07/carheater/infra/forecast"
	infraheater "github.com/kilianp07/carheater/infra/heater"
	"github.com/kilianp07/carheater/infra/logger"
	"github.com/kilianp07/carheater/infra/metrics"
	infamon "github.com/kilianp07/carheater/infra/monitoring"
	"github.com/kilianp07/carheater/infra/mqtt"
	"github.com/kilianp07/carheater/infra/store"
	"github.com/kilianp07/carheater/infra/trigger"
	"github.com/kilianp07/carheater/internal/eventbus"
)

// Service owns the scheduler and everything around it.
type Service struct {
	cfg       *config.Config
	Scheduler *scheduler.Scheduler

	store     scheduler.Store
	heater    coreheater.Control
	mqtt      *mqtt.PahoClient
	triggers  *trigger.Cron
	fetcher   infraforecast.Fetcher
	sink      coremetrics.MetricsSink
	forecasts *eventbus.TypedBus[forecast.Batch]
	statuses  *eventbus.TypedBus[scheduler.Status]
	handler   http.Handler
	log       logger.Logger
	now       func() time.Time
}

// New creates a Service from the configuration. Nothing is started until Run.
func New(cfg *config.Config) (*Service, error) {
	if err := cfg.Logging.Apply(); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	mon, err := infamon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	s := &Service{
		cfg:       cfg,
		forecasts: eventbus.NewTyped[forecast.Batch](),
		statuses:  eventbus.NewTyped[scheduler.Status](),
		log:       logger.New("service"),
		now:       time.Now,
	}
	if err := s.build(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) build() error {
	var err error
	if s.sink, err = coremetrics.NewMetricsSink(s.cfg.Metrics.Sinks); err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	if s.store, err = store.New(s.cfg.State); err != nil {
		return fmt.Errorf("state store: %w", err)
	}

	var client coremqtt.Client
	if s.cfg.NeedsMQTT() {
		if s.mqtt, err = mqtt.NewPahoClient(s.cfg.MQTT); err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		client = s.mqtt
	}
	if s.heater, err = infraheater.New(s.cfg.Heater, client); err != nil {
		return fmt.Errorf("heater: %w", err)
	}

	fc, err := infraforecast.NewClient(s.cfg.Forecast)
	if err != nil {
		return fmt.Errorf("forecast client: %w", err)
	}
	s.fetcher = fc
	s.triggers = trigger.NewCron(logger.New("trigger"))

	s.Scheduler, err = scheduler.New(s.cfg.Scheduler, scheduler.Deps{
		Store:    s.store,
		Triggers: s.triggers,
		Heater:   s.heater,
		Sink:     s.sink,
		Statuses: s.statuses,
		Logger:   logger.New("scheduler"),
		Now:      s.now,
	})
	if err != nil {
		return err
	}
	s.handler = apiheater.NewRouter(apiheater.NewHandler(s.Scheduler, s.now))
	return nil
}

// Handler is the HTTP API.
func (s *Service) Handler() http.Handler { return s.handler }

// Run starts every component and blocks until ctx is canceled or the API
// listener fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	batches := s.forecasts.Subscribe()
	s.triggers.Start()
	metrics.StartForecastCollector(ctx, s.forecasts, s.sink)

	g.Go(func() error {
		defer monitoring.Recover()
		return s.Scheduler.Run(ctx, batches)
	})
	g.Go(func() error {
		infraforecast.NewPoller(s.fetcher, s.cfg.Forecast.PollInterval(), s.forecasts).Run(ctx)
		return nil
	})
	if s.cfg.Status.Topic != "" && s.mqtt != nil {
		fw := newStatusForwarder(s.mqtt, s.cfg.Status, s.now)
		sub := s.statuses.Subscribe()
		g.Go(func() error {
			defer s.statuses.Unsubscribe(sub)
			fw.run(ctx, sub)
			return nil
		})
	}
	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		g.Go(func() error { return metrics.StartPromServer(ctx, addr) })
	}
	if s.cfg.API.Address != "" {
		g.Go(func() error { return s.serveAPI(ctx) })
	}
	s.log.Infof("carheater running (heater backend %s, forecast city %s)", s.cfg.Heater.Backend, s.cfg.Forecast.City)
	return g.Wait()
}

func (s *Service) serveAPI(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.API.Address, Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving heater API on %s", s.cfg.API.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api listener: %w", err)
	}
	return nil
}

// Close releases resources held by the service. The scheduler has already
// switched the heater off when Run returned.
func (s *Service) Close() error {
	var errs []error
	if s.triggers != nil {
		<-s.triggers.Stop().Done()
	}
	s.forecasts.Close()
	s.statuses.Close()
	if s.heater != nil {
		if err := infraheater.Close(s.heater); err != nil {
			errs = append(errs, fmt.Errorf("heater: %w", err))
		}
	}
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("state store: %w", err))
		}
	}
	if c, ok := s.sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("metrics sink: %w", err))
		}
	}
	if s.mqtt != nil {
		if err := s.mqtt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}
	monitoring.Flush(2 * time.Second)
	return errors.Join(errs...)
}
