package mqtt

import (
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/kilianp07/carheater/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockClient records commands in memory. Devices listed in FailIDs fail to
// publish; devices in NoAck never acknowledge.
type MockClient struct {
	mu       sync.Mutex
	Commands []Command
	Statuses map[string][]byte
	FailIDs  map[string]bool
	NoAck    map[string]bool
	acks     map[string]bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Statuses: make(map[string][]byte),
		FailIDs:  make(map[string]bool),
		NoAck:    make(map[string]bool),
		acks:     make(map[string]bool),
	}
}

func (m *MockClient) SendCommand(deviceID string, on bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[deviceID] {
		return "", fmt.Errorf("publish failed")
	}
	id := fmt.Sprintf("cmd-%d", len(m.Commands)+1)
	m.Commands = append(m.Commands, Command{CommandID: id, DeviceID: deviceID, On: on, Timestamp: time.Now().UnixMilli()})
	m.acks[id] = !m.NoAck[deviceID]
	return id, nil
}

// WaitForAck answers immediately from the recorded outcome.
func (m *MockClient) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.acks[commandID]
	m.mu.Unlock()
	if !exists {
		return false, coremqtt.ErrUnknownCommand
	}
	if !ok {
		return false, coremqtt.ErrAckTimeout
	}
	return true, nil
}

func (m *MockClient) PublishStatus(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses[topic] = append([]byte(nil), payload...)
	return nil
}

// Last returns the most recent command.
func (m *MockClient) Last() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return Command{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// Status returns the last payload published on topic.
func (m *MockClient) Status(topic string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Statuses[topic]
	return p, ok
}
