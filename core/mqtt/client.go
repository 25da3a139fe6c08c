// Package mqtt declares the broker operations the heater relay and status
// publishing rely on.
package mqtt

import "time"

// Client sends relay commands and waits for device acknowledgments.
type Client interface {
	// SendCommand publishes an on/off command for deviceID and returns the
	// command identifier used to track the acknowledgment.
	SendCommand(deviceID string, on bool) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for commandID or until the
	// timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}

// StatusPublisher publishes retained status documents.
type StatusPublisher interface {
	PublishStatus(topic string, payload []byte) error
}
