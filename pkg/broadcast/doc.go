// Package broadcast fans typed messages out to subscribers of a topic.
//
// The composer publishes a change notification on the session's topic after
// every edit, and each open live preview stream subscribes to it:
//
//	b := broadcast.NewMemoryBroadcaster[Change](8)
//	sub := b.Subscribe(ctx, sessionID)
//	defer sub.Close()
//	for msg := range sub.Receive() {
//		// re-render msg.Data
//	}
//
// Delivery is best effort. A subscriber whose buffer is full misses the
// message instead of blocking the publisher. RedisBroadcaster carries the
// same messages over Redis pub/sub so several processes can share sessions.
package broadcast
