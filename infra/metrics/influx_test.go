package metrics

import (
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/stretchr/testify/assert"
)

type lineRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (l *lineRecorder) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		l.mu.Lock()
		l.bodies = append(l.bodies, strings.TrimSpace(string(data)))
		l.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordSchedule(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()
	now := time.Date(2019, 12, 12, 6, 0, 0, 0, time.UTC)
	err := sink.RecordSchedule(coremetrics.ScheduleEvent{
		ReadyTime:       "07:30",
		Enabled:         true,
		Armed:           true,
		DurationMinutes: 60,
		MeanTemperature: -5,
		Samples:         6,
		NextStart:       now.Add(30 * time.Minute),
		Time:            now,
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if assert.Len(t, rec.bodies, 1) {
		line := rec.bodies[0]
		assert.True(t, strings.HasPrefix(line, "heating_schedule,"), line)
		assert.Contains(t, line, "ready_time=07:30")
		assert.Contains(t, line, "duration_minutes=60i")
		assert.Contains(t, line, "mean_temperature=-5")
	}
}

func TestInfluxSink_RecordScheduleWithoutSamples(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()
	err := sink.RecordSchedule(coremetrics.ScheduleEvent{ReadyTime: "07:30", MeanTemperature: math.NaN(), Time: time.Now()})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if assert.Len(t, rec.bodies, 1) {
		assert.NotContains(t, rec.bodies[0], "mean_temperature")
	}
}

func TestInfluxSink_RecordHeaterAction(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()
	err := sink.RecordHeaterAction(coremetrics.HeaterActionEvent{
		Action:  "on",
		Reason:  "start_trigger",
		Err:     "relay timeout",
		Latency: 1500 * time.Millisecond,
		Time:    time.Now(),
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if assert.Len(t, rec.bodies, 1) {
		line := rec.bodies[0]
		assert.True(t, strings.HasPrefix(line, "heater_action,"), line)
		assert.Contains(t, line, "reason=start_trigger")
		assert.Contains(t, line, "success=false")
		assert.Contains(t, line, "latency_ms=1500i")
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
