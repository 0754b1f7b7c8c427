package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
)

const defaultBuffer = 16

// Event is one message on the realtime channel.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Listener is a subscribed realtime client. Events arrive on C until the
// listener is unsubscribed or the hub is closed.
type Listener struct {
	ID string
	C  <-chan Event

	ch chan Event
}

// Hub fans events out to listeners. A listener whose buffer is full misses
// the event; publishers are never blocked.
type Hub struct {
	buffer int

	mu        sync.RWMutex
	listeners map[string]*Listener
	closed    bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		buffer:    buffer,
		listeners: make(map[string]*Listener),
	}
}

// Subscribe registers a listener and queues the initial events ahead of any
// later broadcast.
func (h *Hub) Subscribe(initial ...Event) *Listener {
	return h.SubscribeSnapshot(func() []Event { return initial })
}

// SubscribeSnapshot registers a listener seeded with the events snapshot
// returns. snapshot runs under the hub lock, so a Publish either lands in
// the snapshot's source state first or is queued after the snapshot.
// snapshot must not call back into the hub.
func (h *Hub) SubscribeSnapshot(snapshot func() []Event) *Listener {
	h.mu.Lock()
	defer h.mu.Unlock()

	var initial []Event
	if snapshot != nil {
		initial = snapshot()
	}
	size := h.buffer
	if len(initial) > size {
		size = len(initial)
	}
	ch := make(chan Event, size)
	for _, evt := range initial {
		ch <- evt
	}

	listener := &Listener{ID: uuid.NewString(), C: ch, ch: ch}
	if h.closed {
		close(ch)
		return listener
	}
	h.listeners[listener.ID] = listener
	return listener
}

func (h *Hub) Unsubscribe(listener *Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.listeners[listener.ID]; !ok {
		return
	}
	delete(h.listeners, listener.ID)
	close(listener.ch)
}

func (h *Hub) Publish(event string, data interface{}) {
	evt := Event{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, listener := range h.listeners {
		select {
		case listener.ch <- evt:
		default:
			log.Logger().WithField("listener", id).Warn("Realtime listener is slow, dropping " + event + " event")
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close disconnects every listener.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, listener := range h.listeners {
		close(listener.ch)
		delete(h.listeners, id)
	}
}
