package heating

import (
	"math"
	"time"

	"github.com/kilianp07/carheater/core/forecast"
	"gonum.org/v1/gonum/stat"
)

// DurationParams maps a mean outdoor temperature to a heating duration.
type DurationParams struct {
	Lookback      time.Duration
	HeatStartTemp float64
	FullHeatTemp  float64
	MinMinutes    int
	MaxMinutes    int
}

func DefaultDurationParams() DurationParams {
	return DurationParams{
		Lookback:      5 * time.Hour,
		HeatStartTemp: 10,
		FullHeatTemp:  -15,
		MinMinutes:    15,
		MaxMinutes:    90,
	}
}

// Estimate is the outcome of a duration computation for one ready instant.
type Estimate struct {
	Ready           time.Time
	WindowStart     time.Time
	WindowEnd       time.Time
	Samples         int
	MeanTemperature float64
	Minutes         int
}

// ForecastWindow returns the inclusive window of samples relevant for ready.
func ForecastWindow(ready time.Time, lookback time.Duration) (time.Time, time.Time) {
	ready = ready.UTC()
	return ready.Add(-lookback), ready.Truncate(time.Hour).Add(time.Hour)
}

// WindowSamples trims a chronologically ordered sequence to [start, end].
// Samples are dropped from the front while before start, then from the back
// while after end.
func WindowSamples(samples []forecast.Sample, start, end time.Time) []forecast.Sample {
	i := 0
	for i < len(samples) && samples[i].Timestamp.Before(start) {
		i++
	}
	j := len(samples)
	for j > i && samples[j-1].Timestamp.After(end) {
		j--
	}
	return samples[i:j]
}

// MeanTemperature returns NaN for an empty slice.
func MeanTemperature(samples []forecast.Sample) float64 {
	if len(samples) == 0 {
		return math.NaN()
	}
	temps := make([]float64, len(samples))
	for i, s := range samples {
		temps[i] = s.Temperature
	}
	return stat.Mean(temps, nil)
}

// Minutes converts a mean temperature into whole heating minutes.
func (p DurationParams) Minutes(mean float64) int {
	switch {
	case math.IsNaN(mean):
		return 0
	case mean > p.HeatStartTemp:
		return 0
	case mean < p.FullHeatTemp:
		return p.MaxMinutes
	}
	pct := (mean - p.HeatStartTemp) / (p.FullHeatTemp - p.HeatStartTemp)
	return int(math.Round(pct*float64(p.MaxMinutes-p.MinMinutes) + float64(p.MinMinutes)))
}

// Estimate computes the heating duration for ready from a forecast sequence.
func (p DurationParams) Estimate(ready time.Time, samples []forecast.Sample) Estimate {
	start, end := ForecastWindow(ready, p.Lookback)
	window := WindowSamples(samples, start, end)
	mean := MeanTemperature(window)
	return Estimate{
		Ready:           ready.UTC(),
		WindowStart:     start,
		WindowEnd:       end,
		Samples:         len(window),
		MeanTemperature: mean,
		Minutes:         p.Minutes(mean),
	}
}
