package heating

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/carheater/core/forecast"
	"github.com/stretchr/testify/assert"
)

func hourly(from time.Time, temps ...float64) []forecast.Sample {
	out := make([]forecast.Sample, len(temps))
	for i, v := range temps {
		out[i] = forecast.Sample{Temperature: v, Timestamp: from.Add(time.Duration(i) * time.Hour)}
	}
	return out
}

func TestMinutesBoundaries(t *testing.T) {
	p := DefaultDurationParams()
	tests := []struct {
		mean float64
		want int
	}{
		{10.5, 0},
		{10, 15},
		{-2.5, 53},
		{-15, 90},
		{-20, 90},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Minutes(tt.mean), "mean %v", tt.mean)
	}
}

func TestMinutesMonotonic(t *testing.T) {
	p := DefaultDurationParams()
	prev := -1
	for m := 15.0; m >= -25; m -= 0.25 {
		got := p.Minutes(m)
		if got < prev {
			t.Fatalf("duration decreased at %.2f: %d < %d", m, got, prev)
		}
		if got != 0 && (got < p.MinMinutes || got > p.MaxMinutes) {
			t.Fatalf("duration %d out of range at %.2f", got, m)
		}
		prev = got
	}
}

func TestForecastWindow(t *testing.T) {
	ready := at("2019-12-13T07:30:00Z")
	start, end := ForecastWindow(ready, 5*time.Hour)
	assert.Equal(t, at("2019-12-13T02:30:00Z"), start)
	assert.Equal(t, at("2019-12-13T08:00:00Z"), end)
}

func TestEstimateUsesWindowOnly(t *testing.T) {
	p := DefaultDurationParams()
	ready := at("2019-12-13T07:30:00Z")
	// 00:00 .. 10:00; window 02:30..08:00 keeps 03:00..08:00.
	samples := hourly(at("2019-12-13T00:00:00Z"), 50, 50, 50, -5, -5, -5, -5, -5, -5, 50, 50)

	est := p.Estimate(ready, samples)
	assert.Equal(t, 6, est.Samples)
	assert.InDelta(t, -5, est.MeanTemperature, 1e-9)
	assert.Equal(t, 60, est.Minutes)
}

func TestEstimateBoundariesInclusive(t *testing.T) {
	p := DefaultDurationParams()
	ready := at("2019-12-13T07:00:00Z")
	samples := []forecast.Sample{
		{Temperature: 0, Timestamp: at("2019-12-13T02:00:00Z")},
		{Temperature: 0, Timestamp: at("2019-12-13T08:00:00Z")},
		{Temperature: 99, Timestamp: at("2019-12-13T08:00:01Z")},
	}
	est := p.Estimate(ready, samples)
	assert.Equal(t, 2, est.Samples)
	assert.Equal(t, 45, est.Minutes)
}

func TestEstimateNoSamples(t *testing.T) {
	p := DefaultDurationParams()
	ready := at("2019-12-13T07:00:00Z")
	est := p.Estimate(ready, hourly(at("2019-12-10T00:00:00Z"), -20, -20))
	assert.Equal(t, 0, est.Samples)
	assert.True(t, math.IsNaN(est.MeanTemperature))
	assert.Equal(t, 0, est.Minutes)

	assert.Equal(t, 0, p.Estimate(ready, nil).Minutes)
}
