package event

import "sync"

// Broadcaster fans each published event out to every live subscription.
// Delivery is best-effort: a subscriber whose buffer is full loses the
// event rather than stalling plan execution.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscription receives events on C until Close is called.
type Subscription struct {
	C chan Event
	b *Broadcaster
}

func (b *Broadcaster) Subscribe(buffer int) *Subscription {
	sub := &Subscription{C: make(chan Event, buffer), b: b}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (s *Subscription) Close() {
	s.b.mu.Lock()
	if _, ok := s.b.subs[s]; ok {
		delete(s.b.subs, s)
		close(s.C)
	}
	s.b.mu.Unlock()
}

func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		select {
		case sub.C <- e:
		default:
		}
	}
}
