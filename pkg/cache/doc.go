// Package cache provides a generic in-memory LRU cache with optional
// per-entry expiry.
//
// The catalog package keeps fetched base template HTML here so repeated
// previews do not hit disk, object storage or the network.
//
//	c := cache.New[string, string](64, cache.WithTTL[string, string](5*time.Minute))
//	c.Set("ad", html)
//	if v, ok := c.Get("ad"); ok {
//		// ...
//	}
//
// All methods are safe for concurrent use.
package cache
