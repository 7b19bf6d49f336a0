package pubsub

import (
	"sync"
)

// DefaultBuffer is the channel capacity given to each subscriber.
const DefaultBuffer = 16

type PubSub[T any] struct {
	mu     sync.Mutex
	subs   map[string][]chan T
	buffer int
	closed bool
}

func NewPubSub[T any]() *PubSub[T] {
	return NewBufferedPubSub[T](DefaultBuffer)
}

// NewBufferedPubSub creates a PubSub whose subscriber channels hold up to
// buffer messages before Publish blocks.
func NewBufferedPubSub[T any](buffer int) *PubSub[T] {
	if buffer < 0 {
		buffer = 0
	}
	return &PubSub[T]{
		subs:   make(map[string][]chan T),
		buffer: buffer,
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T, ps.buffer)
	if ps.closed {
		close(ch)
		return ch
	}
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (ps *PubSub[T]) Unsubscribe(topic string, sub <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	chans := ps.subs[topic]
	for i, ch := range chans {
		if ch == sub {
			close(ch)
			ps.subs[topic] = append(chans[:i], chans[i+1:]...)
			return
		}
	}
}

func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	for _, ch := range ps.subs[topic] {
		ch <- data
	}
}

// Close closes every subscriber channel. Later publishes are dropped.
func (ps *PubSub[T]) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	ps.closed = true
	for topic, chans := range ps.subs {
		for _, ch := range chans {
			close(ch)
		}
		delete(ps.subs, topic)
	}
}
