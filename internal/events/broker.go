package events

import "sync"

// clientBufferSize is the capacity of a subscriber's mailbox. It is sized so a dashboard that
// briefly stalls doesn't lose the most recent burst of activity, but once
// full, new events are dropped for that client rather than blocking the
// publisher (spec.md §4.G).
const clientBufferSize = 64

// Broker fans Event values out to every subscribed client. It generalizes
// the teacher's single central goroutine + registration channels design,
// but every send — to the broker and from the broker to a client — goes
// through a non-blocking select instead of an unbuffered channel send, so a
// slow or absent dashboard can never stall a handler.
type Broker struct {
	mu      sync.RWMutex
	clients map[chan Event]bool
}

func NewBroker() *Broker {
	return &Broker{
		clients: make(map[chan Event]bool),
	}
}

// Subscribe registers a new listener and returns its channel.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, clientBufferSize)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// Publish implements Publisher: it fans e out to every subscriber without
// ever blocking, dropping the event for clients whose mailbox is full.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.clients {
		select {
		case ch <- e:
		default:
		}
	}
}
