package history

import "sync"

// History is a linear undo/redo stack of snapshots of type T.
type History[T any] struct {
	mu      sync.RWMutex
	past    []T
	present T
	future  []T
	limit   int
}

// Option configures a History.
type Option func(*options)

type options struct {
	limit int
}

// WithLimit caps the number of past snapshots. Zero or negative means no limit.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// New returns a history with an empty past and future.
func New[T any](initial T, opts ...Option) *History[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &History[T]{
		present: initial,
		limit:   o.limit,
	}
}

// Set records next as the present snapshot and clears the future.
func (h *History[T]) Set(next T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.past = append(h.past, h.present)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.present = next
	h.future = nil
}

// Undo steps back one snapshot. It reports whether anything changed.
func (h *History[T]) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.past) == 0 {
		return false
	}
	last := len(h.past) - 1
	prev := h.past[last]
	h.past = h.past[:last]
	h.future = append([]T{h.present}, h.future...)
	h.present = prev
	return true
}

// Redo re-applies the nearest undone snapshot. It reports whether anything changed.
func (h *History[T]) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	return true
}

// CanUndo reports whether the past is non-empty.
func (h *History[T]) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.past) > 0
}

// CanRedo reports whether the future is non-empty.
func (h *History[T]) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.future) > 0
}

// Present returns the current snapshot.
func (h *History[T]) Present() T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.present
}

// Snapshot is a point-in-time copy of a history.
type Snapshot[T any] struct {
	Past    []T
	Present T
	Future  []T
}

// Snapshot returns copies of the past and future along with the present.
func (h *History[T]) Snapshot() Snapshot[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()

	past := make([]T, len(h.past))
	copy(past, h.past)
	future := make([]T, len(h.future))
	copy(future, h.future)

	return Snapshot[T]{
		Past:    past,
		Present: h.present,
		Future:  future,
	}
}
