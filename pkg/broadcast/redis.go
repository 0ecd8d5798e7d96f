package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailcanvas/pkg/logger"
)

// RedisBroadcaster delivers JSON encoded messages over Redis pub/sub.
type RedisBroadcaster[T any] struct {
	client     redis.UniversalClient
	prefix     string
	bufferSize int
	log        *slog.Logger

	mu     sync.Mutex
	subs   map[*subscriber[T]]struct{}
	closed bool
}

var _ Broadcaster[int] = (*RedisBroadcaster[int])(nil)

// NewRedisBroadcaster publishes to channels named prefix+topic.
func NewRedisBroadcaster[T any](client redis.UniversalClient, prefix string, bufferSize int, log *slog.Logger) *RedisBroadcaster[T] {
	if log == nil {
		log = slog.Default()
	}
	return &RedisBroadcaster[T]{
		client:     client,
		prefix:     prefix,
		bufferSize: max(bufferSize, 1),
		log:        log.With(logger.Component("broadcast")),
		subs:       make(map[*subscriber[T]]struct{}),
	}
}

func (b *RedisBroadcaster[T]) Subscribe(ctx context.Context, topic string) Subscriber[T] {
	subCtx, cancel := context.WithCancel(ctx)
	var sub *subscriber[T]
	sub = newSubscriber[T](b.bufferSize, func() {
		cancel()
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	})

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = sub.Close()
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	ps := b.client.Subscribe(subCtx, b.prefix+topic)
	go func() {
		defer func() { _ = ps.Close() }()
		defer func() { _ = sub.Close() }()

		ch := ps.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var data T
				if err := json.Unmarshal([]byte(m.Payload), &data); err != nil {
					b.log.WarnContext(subCtx, "dropping undecodable message",
						logger.Event("receive"),
						logger.Error(err),
					)
					continue
				}
				sub.send(Message[T]{Topic: topic, Data: data})
			}
		}
	}()
	return sub
}

func (b *RedisBroadcaster[T]) Publish(ctx context.Context, topic string, data T) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("broadcast: encode: %w", err)
	}
	if err := b.client.Publish(ctx, b.prefix+topic, payload).Err(); err != nil {
		return fmt.Errorf("broadcast: publish: %w", err)
	}
	return nil
}

// Close ends local subscriptions. The Redis client stays open.
func (b *RedisBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*subscriber[T], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}
