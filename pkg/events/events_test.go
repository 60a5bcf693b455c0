package events

import (
	"testing"
	"time"
)

func TestSubscribePublishDeliversEvent(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	broker.Publish(&Event{
		Type:    EventPointAssigned,
		Message: "point assigned",
	})

	select {
	case evt := <-sub:
		if evt.Type != EventPointAssigned {
			t.Errorf("expected EventPointAssigned, got %s", evt.Type)
		}
		if evt.Timestamp.IsZero() {
			t.Error("expected Publish to stamp a timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	broker.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
}

func TestSubscriberCount(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	defer broker.Stop()

	if broker.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", broker.SubscriberCount())
	}

	subA := broker.Subscribe()
	subB := broker.Subscribe()

	if broker.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", broker.SubscriberCount())
	}

	broker.Unsubscribe(subA)
	if broker.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber after unsubscribe, got %d", broker.SubscriberCount())
	}
	broker.Unsubscribe(subB)
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	defer broker.Stop()

	subA := broker.Subscribe()
	subB := broker.Subscribe()
	defer broker.Unsubscribe(subA)
	defer broker.Unsubscribe(subB)

	broker.Publish(&Event{Type: EventStarDown, Message: "star-b is down"})

	for _, sub := range []Subscriber{subA, subB} {
		select {
		case evt := <-sub:
			if evt.Type != EventStarDown {
				t.Errorf("expected EventStarDown, got %s", evt.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast event")
		}
	}
}

func TestPublishStopsCleanlyAfterStop(t *testing.T) {
	broker := NewBroker()
	broker.Start()

	sub := broker.Subscribe()
	broker.Publish(&Event{Type: EventSearchSatisfied, Message: "search settled"})

	select {
	case <-sub:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event before stop")
	}

	broker.Stop()
	broker.Publish(&Event{Type: EventSearchTimedOut, Message: "after stop"})
}
