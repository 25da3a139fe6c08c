package heater

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/kilianp07/carheater/infra/logger"
)

type houmState struct {
	On  bool `json:"on"`
	Bri *int `json:"bri,omitempty"`
}

type houmApplyDevice struct {
	ID    string    `json:"id"`
	State houmState `json:"state"`
}

// Houm switches the heater through a Houm lighting controller site.
type Houm struct {
	http       *retryablehttp.Client
	applyURL   string
	deviceID   string
	brightness int
	log        logger.Logger
}

func NewHoum(cfg HoumConfig) (*Houm, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("houm base url: %w", err)
	}
	apply := base.JoinPath("api", "site", cfg.SiteKey, "applyDevice")

	log := logger.New("heater_houm")
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = logger.Leveled{L: log}
	return &Houm{http: rc, applyURL: apply.String(), deviceID: cfg.DeviceID, brightness: cfg.Brightness, log: log}, nil
}

func (h *Houm) TurnOn(ctx context.Context) error {
	bri := h.brightness
	return h.apply(ctx, houmState{On: true, Bri: &bri})
}

func (h *Houm) TurnOff(ctx context.Context) error {
	return h.apply(ctx, houmState{On: false})
}

func (h *Houm) apply(ctx context.Context, st houmState) error {
	body, err := json.Marshal(houmApplyDevice{ID: h.deviceID, State: st})
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, h.applyURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("houm applyDevice: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("houm applyDevice: unexpected status %s", resp.Status)
	}
	h.log.Debugf("houm device %s %s in %s", h.deviceID, stateName(st.On), time.Since(start))
	return nil
}
