package mqtt

import "errors"

// ErrAckTimeout is returned when no acknowledgment is received before the timeout.
var ErrAckTimeout = errors.New("timeout waiting for ack")

// ErrUnknownCommand is returned by WaitForAck for an id that was never sent
// or was already consumed.
var ErrUnknownCommand = errors.New("unknown command")
