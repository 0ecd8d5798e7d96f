// Package ratelimiter implements a token bucket limiter.
//
// The editor uses it to cap how many test e-mails a client can send:
//
//	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	res, err := b.Allow(ctx, clientIP)
//	if !res.Allowed() {
//		// wait res.RetryAfter()
//	}
//
// MemoryStore keeps buckets in process. RedisStore shares them between
// instances.
package ratelimiter
