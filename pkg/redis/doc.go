// Package redis connects to Redis with retries and exposes a context-aware
// key-value Storage used to persist user templates.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := templatestore.New(redis.NewStorage(client, redis.WithPrefix("mailcanvas:")))
package redis
