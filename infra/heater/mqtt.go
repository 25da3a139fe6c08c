package heater

import (
	"context"
	"fmt"
	"time"

	coremqtt "github.com/kilianp07/carheater/core/mqtt"
	"github.com/kilianp07/carheater/infra/logger"
)

// MQTTRelay switches a relay device that listens on heater/{device}/command.
type MQTTRelay struct {
	client     coremqtt.Client
	deviceID   string
	ackTimeout time.Duration
	log        logger.Logger
}

func NewMQTTRelay(client coremqtt.Client, cfg MQTTConfig) *MQTTRelay {
	return &MQTTRelay{
		client:     client,
		deviceID:   cfg.DeviceID,
		ackTimeout: time.Duration(cfg.AckTimeoutMS) * time.Millisecond,
		log:        logger.New("heater_mqtt"),
	}
}

func (r *MQTTRelay) TurnOn(ctx context.Context) error  { return r.send(ctx, true) }
func (r *MQTTRelay) TurnOff(ctx context.Context) error { return r.send(ctx, false) }

func (r *MQTTRelay) send(ctx context.Context, on bool) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	id, err := r.client.SendCommand(r.deviceID, on)
	if err != nil {
		return fmt.Errorf("send %s command to %s: %w", stateName(on), r.deviceID, err)
	}
	if r.ackTimeout <= 0 {
		return nil
	}
	timeout := r.ackTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	acked, err := r.client.WaitForAck(id, timeout)
	if err != nil {
		return fmt.Errorf("await ack for %s: %w", id, err)
	}
	if !acked {
		return fmt.Errorf("relay %s did not acknowledge command %s", r.deviceID, id)
	}
	r.log.Debugf("relay %s acknowledged %s", r.deviceID, stateName(on))
	return nil
}
