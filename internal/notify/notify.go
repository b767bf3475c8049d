// Package notify delivers change notifications for backend tables to
// interested subscribers, either in-process or over an MQTT broker.
package notify

import (
	"context"
	"errors"
	"sync"
)

// Table names that carry change notifications.
const (
	TableMessages = "messages"
)

// Event describes one change to a row of a table. Key is the value the
// subscription is filtered on (for messages, the recipient id).
type Event struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	Key   string `json:"key"`
	ID    string `json:"id,omitempty"`
}

// Publisher emits change events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscriber opens change streams filtered by table and key.
type Subscriber interface {
	Subscribe(ctx context.Context, table, key string) (*Subscription, error)
}

// ErrClosed is returned when subscribing to a closed notifier.
var ErrClosed = errors.New("notifier is closed")

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 16

// Subscription is a live change stream. C is closed once Close returns.
type Subscription struct {
	C <-chan Event

	once    sync.Once
	release func()
}

// Close stops delivery and releases the subscription. It is safe to call
// more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

func streamKey(table, key string) string {
	return table + "/" + key
}

// Memory is an in-process fan-out of events to subscriptions.
type Memory struct {
	mu     sync.Mutex
	subs   map[string]map[chan Event]struct{}
	buffer int
	closed bool
}

// NewMemory creates an in-process notifier. A buffer below one uses
// DefaultBuffer.
func NewMemory(buffer int) *Memory {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Memory{subs: make(map[string]map[chan Event]struct{}), buffer: buffer}
}

// Subscribe registers a stream for table/key.
func (m *Memory) Subscribe(ctx context.Context, table, key string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	sk := streamKey(table, key)
	ch := make(chan Event, m.buffer)
	if m.subs[sk] == nil {
		m.subs[sk] = make(map[chan Event]struct{})
	}
	m.subs[sk][ch] = struct{}{}

	return &Subscription{C: ch, release: func() { m.remove(sk, ch) }}, nil
}

func (m *Memory) remove(sk string, ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.subs[sk]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(m.subs, sk)
	}
	close(ch)
}

// Publish delivers ev to every subscription on its table/key. A subscriber
// whose buffer is full misses the event.
func (m *Memory) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs[streamKey(ev.Table, ev.Key)] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribers reports the number of open subscriptions on table/key.
func (m *Memory) Subscribers(table, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[streamKey(table, key)])
}

// Close closes every open subscription and rejects new ones.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for sk, set := range m.subs {
		for ch := range set {
			close(ch)
		}
		delete(m.subs, sk)
	}
}
