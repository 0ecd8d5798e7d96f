package templatestore

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/mailcanvas/pkg/logger"
)

// Key is the storage key holding the template list.
const Key = "userTemplates:v1"

// Backend is a minimal key-value store.
// Load returns nil data and a nil error when the key is absent.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, value []byte) error
}

// Repository manages user templates.
type Repository interface {
	List(ctx context.Context) []UserTemplate
	Get(ctx context.Context, id string) (UserTemplate, bool)
	Add(ctx context.Context, t UserTemplate)
	// Update reports whether a template with t's id was stored.
	Update(ctx context.Context, t UserTemplate) bool
	Delete(ctx context.Context, id string)
	Save(ctx context.Context, t UserTemplate)
}

// Store implements Repository over a Backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	key     string
	log     *slog.Logger
}

var _ Repository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report swallowed backend failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New returns a store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     Key,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("templatestore"))
	return s
}

// List returns all stored templates.
func (s *Store) List(ctx context.Context) []UserTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Get returns the template with the given id.
func (s *Store) Get(ctx context.Context, id string) (UserTemplate, bool) {
	for _, t := range s.List(ctx) {
		if t.ID == id {
			return t, true
		}
	}
	return UserTemplate{}, false
}

// Add appends t.
func (s *Store) Add(ctx context.Context, t UserTemplate) {
	s.mutate(ctx, "add", func(list []UserTemplate) []UserTemplate {
		return append(list, t)
	})
}

// Update replaces the template sharing t's id and reports whether one was
// found. Unknown ids leave the list unchanged.
func (s *Store) Update(ctx context.Context, t UserTemplate) bool {
	var found bool
	s.mutate(ctx, "update", func(list []UserTemplate) []UserTemplate {
		if i := indexOf(list, t.ID); i >= 0 {
			list[i] = t
			found = true
		}
		return list
	})
	return found
}

// Delete removes the template with the given id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mutate(ctx, "delete", func(list []UserTemplate) []UserTemplate {
		return slices.DeleteFunc(list, func(t UserTemplate) bool { return t.ID == id })
	})
}

// Save updates t when its id is stored and adds it otherwise.
func (s *Store) Save(ctx context.Context, t UserTemplate) {
	s.mutate(ctx, "save", func(list []UserTemplate) []UserTemplate {
		if i := indexOf(list, t.ID); i >= 0 {
			list[i] = t
			return list
		}
		return append(list, t)
	})
}

func (s *Store) mutate(ctx context.Context, op string, fn func([]UserTemplate) []UserTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := fn(s.read(ctx))

	data, err := json.Marshal(list)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to encode templates", logger.Event(op), logger.Error(err))
		return
	}
	if err := s.backend.Store(ctx, s.key, data); err != nil {
		s.log.WarnContext(ctx, "failed to persist templates", logger.Event(op), logger.Error(err))
	}
}

func (s *Store) read(ctx context.Context) []UserTemplate {
	data, err := s.backend.Load(ctx, s.key)
	if err != nil {
		s.log.WarnContext(ctx, "failed to load templates", logger.Error(err))
		return []UserTemplate{}
	}
	if len(data) == 0 {
		return []UserTemplate{}
	}

	var list []UserTemplate
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		s.log.WarnContext(ctx, "discarding corrupt template payload", logger.Error(err))
		return []UserTemplate{}
	}
	return list
}

func indexOf(list []UserTemplate, id string) int {
	return slices.IndexFunc(list, func(t UserTemplate) bool { return t.ID == id })
}
