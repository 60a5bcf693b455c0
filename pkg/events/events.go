package events

import (
	"sync"
	"time"
)

// EventType represents the type of event flowing through a star's
// internal broker.
type EventType string

const (
	EventPointAssigned      EventType = "point.assigned"
	EventPointStatusChanged EventType = "point.status_changed"
	EventPointRemoved       EventType = "point.removed"
	EventStarJoined         EventType = "star.joined"
	EventStarLeft           EventType = "star.left"
	EventStarDown           EventType = "star.down"
	EventWaveBounced        EventType = "wave.bounced"
	EventWaveDropped        EventType = "wave.dropped"
	EventSearchSatisfied    EventType = "search.satisfied"
	EventSearchTimedOut     EventType = "search.timed_out"
)

// Event represents a single occurrence worth notifying local
// subscribers about — registry transitions, wrangler membership
// changes, and traversal outcomes.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Message   string
	Metadata  map[string]string
}

// Subscriber is a channel that receives events.
type Subscriber chan *Event

// Broker manages event subscriptions and distribution within a single
// star process. It never crosses the fabric — waves are how stars talk
// to each other. cmd/star starts and stops one broker per process; no
// component in this repository publishes to it or subscribes to it.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100), // Buffer up to 100 events
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers.
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
