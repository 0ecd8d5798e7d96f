// Package templatestore persists user-authored HTML templates.
//
// All templates live as one JSON array under a single key of a key-value
// Backend. Every mutation reads the whole list, changes it and writes the
// whole list back.
//
// The store is best effort. A missing key, a failed read or a payload that is
// not a JSON array of templates reads as an empty list. Failed writes are
// logged and dropped. Updating or deleting an id that is not stored leaves
// the list unchanged.
//
// Backends shipped with this module:
//
//   - MemoryBackend, for tests and single-process use.
//   - redis.Storage (pkg/redis).
//   - mongo.KVStore (pkg/mongo).
//   - pg.KVStore (pkg/pg).
//   - file.KV (pkg/file), over local disk or S3.
package templatestore
