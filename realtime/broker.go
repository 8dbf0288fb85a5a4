package realtime

import (
	"context"
	"errors"
	"sync"

	"milk-backend/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrBrokerClosed = errors.New("broker is closed")

// Broker is the process-wide publish/subscribe point. Delivery to a local
// subscriber never blocks: a full subscriber buffer drops the event for that
// subscriber only.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	closed bool

	origin string
	relay  Relay
	cancel context.CancelFunc
	log    logrus.FieldLogger
}

// NewBroker creates a broker. relay may be nil for a single instance.
func NewBroker(relay Relay, log logrus.FieldLogger) *Broker {
	return &Broker{
		subs:   make(map[uint64]chan Event),
		origin: uuid.NewString(),
		relay:  relay,
		log:    log.WithField("component", "broker"),
	}
}

// Start begins consuming remote events when a relay is configured.
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBrokerClosed
	}
	ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()

	if b.relay == nil {
		return nil
	}
	return b.relay.Subscribe(ctx, func(env Envelope) {
		if env.Origin == b.origin {
			return
		}
		b.deliver(env.Event)
	})
}

// Publish delivers e to local subscribers and forwards it to the relay.
func (b *Broker) Publish(ctx context.Context, e Event) {
	if !b.deliver(e) {
		return
	}
	metrics.EventsPublished.WithLabelValues(e.Name).Inc()

	if b.relay != nil {
		if err := b.relay.Publish(ctx, Envelope{Origin: b.origin, Event: e}); err != nil {
			b.log.WithError(err).WithField("event", e.Name).Warn("relay publish failed")
		}
	}
}

func (b *Broker) deliver(e Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false
	}
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.WithFields(logrus.Fields{"subscriber": id, "event": e.Name}).Warn("subscriber buffer full, event dropped")
		}
	}
	return true
}

// Subscribe registers a buffered subscriber. The returned cancel func
// unregisters it and closes the channel.
func (b *Broker) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
}

// Close stops the relay consumer and closes every subscriber channel.
// Publishing after Close is a no-op.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if b.relay != nil {
		return b.relay.Close()
	}
	return nil
}
