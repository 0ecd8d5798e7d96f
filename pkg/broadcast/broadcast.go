package broadcast

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("broadcaster is closed")

// Message is a payload delivered on a topic.
type Message[T any] struct {
	Topic string
	Data  T
}

// Subscriber receives messages for one topic.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscription ends.
	Receive() <-chan Message[T]
	// Close ends the subscription. It is idempotent.
	Close() error
}

// Broadcaster publishes messages to topic subscribers.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber on topic. The subscription ends when
	// ctx is done or the subscriber is closed.
	Subscribe(ctx context.Context, topic string) Subscriber[T]
	// Publish delivers data to the current subscribers of topic.
	Publish(ctx context.Context, topic string, data T) error
	// Close ends every subscription.
	Close() error
}

type subscriber[T any] struct {
	ch      chan Message[T]
	mu      sync.RWMutex
	closed  bool
	onClose func()
}

func newSubscriber[T any](size int, onClose func()) *subscriber[T] {
	return &subscriber[T]{ch: make(chan Message[T], size), onClose: onClose}
}

func (s *subscriber[T]) Receive() <-chan Message[T] { return s.ch }

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

// send is non-blocking and reports whether msg was queued.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
