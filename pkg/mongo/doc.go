// Package mongo connects to MongoDB with retries and provides KVStore, a
// key-value store over a single collection.
package mongo
