// Package history provides a linear undo/redo history over immutable
// snapshots.
//
// A History keeps three parts: the past (older snapshots, oldest first), the
// present snapshot and the future (undone snapshots, nearest first). Set is the
// only way to record a change; it discards the future, so there is never a
// redo tree.
//
// # Usage
//
//	h := history.New(doc)
//	h.Set(next)
//	h.Undo() // present is doc again
//	h.Redo() // present is next again
//
// Snapshots are stored as given. Callers must treat them as immutable values
// and build a new value for every change.
//
// History is unbounded by default. WithLimit caps the number of past entries;
// the oldest entries are dropped first.
//
// All methods are safe for concurrent use.
package history
