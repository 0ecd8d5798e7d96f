package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster delivers messages within the process.
// All methods are safe for concurrent use.
type MemoryBroadcaster[T any] struct {
	mu         sync.RWMutex
	topics     map[string]map[*subscriber[T]]struct{}
	bufferSize int
	closed     bool
}

var _ Broadcaster[int] = (*MemoryBroadcaster[int])(nil)

// NewMemoryBroadcaster returns a broadcaster whose subscribers buffer
// bufferSize messages, at least one.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		topics:     make(map[string]map[*subscriber[T]]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context, topic string) Subscriber[T] {
	var sub *subscriber[T]
	sub = newSubscriber[T](b.bufferSize, func() { b.remove(topic, sub) })

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.onClose = nil
		_ = sub.Close()
		return sub
	}
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[*subscriber[T]]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			_ = sub.Close()
		}()
	}
	return sub
}

func (b *MemoryBroadcaster[T]) Publish(_ context.Context, topic string, data T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	msg := Message[T]{Topic: topic, Data: data}
	for sub := range b.topics[topic] {
		sub.send(msg)
	}
	return nil
}

// Subscribers counts active subscribers on topic.
func (b *MemoryBroadcaster[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	topics := b.topics
	b.topics = make(map[string]map[*subscriber[T]]struct{})
	b.mu.Unlock()

	for _, subs := range topics {
		for sub := range subs {
			_ = sub.Close()
		}
	}
	return nil
}

func (b *MemoryBroadcaster[T]) remove(topic string, sub *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
}
