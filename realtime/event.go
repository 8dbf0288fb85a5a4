// Package realtime fans state changes out to connected clients.
//
// A Broker owns the subscriber set for the process. Services publish Events
// into it; the websocket Hub is one subscriber. When a Relay is configured the
// broker also forwards events to other instances and delivers theirs locally.
package realtime

import "context"

// Event names pushed to clients.
const (
	EventPointsUpdated  = "milkpoints-updated"
	EventNewOrder       = "new-order"
	EventNewReservation = "new-reservation"
	EventHappyUpdated   = "happy-updated"
)

// Event is one server-to-client notification.
type Event struct {
	Name string         `json:"event"`
	Data map[string]any `json:"data"`
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Envelope is an Event as carried between instances.
type Envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// Relay carries events between instances.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
	// Subscribe starts delivering remote envelopes to fn. It returns once the
	// subscription is active; delivery stops when ctx is done.
	Subscribe(ctx context.Context, fn func(Envelope)) error
	Close() error
}
