package stream

import "sync"

// Topics published whenever the corresponding collection changes.
const (
	TopicPreguntas = "preguntas"
	TopicUsuarios  = "usuarios"
)

// Hub fans change notifications out to live subscribers. Notifications carry
// no payload; subscribers re-query the repository and push a fresh snapshot,
// matching the snapshot-per-change contract of the original live queries.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription is one live listener on a topic. Close must be called when the
// listening view goes away, otherwise the hub keeps pushing into it.
type Subscription struct {
	topic string
	ch    chan struct{}
	hub   *Hub
	once  sync.Once
}

// Updates signals that the topic changed since the last receive. Signals are
// coalesced: a slow reader sees at most one pending notification.
func (s *Subscription) Updates() <-chan struct{} {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if set, ok := s.hub.subs[s.topic]; ok {
			delete(set, s)
		}
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{topic: topic, ch: make(chan struct{}, 1), hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[topic] = set
	}
	set[s] = struct{}{}
	return s
}

// Publish notifies every subscriber of the topic without blocking.
func (h *Hub) Publish(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[topic] {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports the current listener count for a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}
