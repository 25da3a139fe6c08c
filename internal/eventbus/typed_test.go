package eventbus

import "testing"

type reading struct {
	Temp float64
}

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[reading]()
	ch := bus.Subscribe()
	bus.Publish(reading{Temp: -4.5})
	v := <-ch
	if v.Temp != -4.5 {
		t.Fatalf("expected -4.5 got %v", v.Temp)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestTypedBusDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.Subscribe()
	for i := 0; i < SubscriberBuffer+3; i++ {
		bus.Publish(i)
	}
	if len(ch) != SubscriberBuffer {
		t.Fatalf("expected %d buffered, got %d", SubscriberBuffer, len(ch))
	}
	if first := <-ch; first != 0 {
		t.Fatalf("expected oldest event first, got %d", first)
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("expected closed channel from closed bus")
	}
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
