package composer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcanvas/pkg/broadcast"
	"github.com/dmitrymomot/mailcanvas/pkg/catalog"
	"github.com/dmitrymomot/mailcanvas/pkg/document"
	"github.com/dmitrymomot/mailcanvas/pkg/email"
	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
)

// Service manages editing sessions.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	resolver  *catalog.Resolver
	templates templatestore.Repository
	storage   file.Storage
	sender    email.EmailSender
	events    broadcast.Broadcaster[Change]

	cfg   Config
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithSender sets the sender used by SendTest.
func WithSender(sender email.EmailSender) Option {
	return func(s *Service) { s.sender = sender }
}

// WithBroadcaster replaces the in-memory change broadcaster.
func WithBroadcaster(b broadcast.Broadcaster[Change]) Option {
	return func(s *Service) {
		if b != nil {
			s.events = b
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator for session and block ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New returns a service. templates and storage may be nil, in which case the
// operations that need them report ErrTemplateNotFound or ErrStorageFailed.
func New(resolver *catalog.Resolver, templates templatestore.Repository, storage file.Storage, opts ...Option) *Service {
	s := &Service{
		sessions:  make(map[string]*session),
		resolver:  resolver,
		templates: templates,
		storage:   storage,
		log:       slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = s.cfg.withDefaults()
	if s.events == nil {
		s.events = broadcast.NewMemoryBroadcaster[Change](s.cfg.EventBuffer)
	}
	s.log = s.log.With(logger.Component("composer"))
	return s
}

// Create opens a session on a copy of doc, or on a new document when doc is nil.
func (s *Service) Create(ctx context.Context, doc *document.Document) State {
	initial := document.New()
	if doc != nil {
		initial = doc.WithBlocks(doc.Blocks)
	}

	sess := &session{
		id: s.newID(),
		editor: document.NewEditor(initial,
			document.WithIDGenerator(s.newID),
			document.WithHistoryLimit(s.cfg.HistoryLimit),
		),
		touched: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.InfoContext(ctx, "session created",
		logger.Event(string(OpCreate)),
		logger.SessionID(sess.id),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state()
}

// Get returns the current state of a session. Reading a session counts as
// activity, so sessions that are only previewed are not swept.
func (s *Service) Get(_ context.Context, id string) (State, error) {
	sess, err := s.session(id)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.now()
	return sess.state(), nil
}

// Close removes a session and tells its subscribers it is gone.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	ch := sess.change(OpClose, "")
	sess.mu.Unlock()
	s.publish(ctx, ch)

	s.log.InfoContext(ctx, "session closed",
		logger.Event(string(OpClose)),
		logger.SessionID(id),
	)
	return nil
}

// Len returns the number of open sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Subscribe returns a subscriber receiving the changes of session id.
// It ends when ctx is done or the subscriber is closed.
func (s *Service) Subscribe(ctx context.Context, id string) (broadcast.Subscriber[Change], error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.events.Subscribe(ctx, id), nil
}

// Sweep closes sessions idle for longer than the configured TTL and returns
// how many were closed. A zero TTL disables expiry.
func (s *Service) Sweep(ctx context.Context) int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	var stale []string
	s.mu.RLock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.touched.Before(cutoff) {
			stale = append(stale, id)
		}
		sess.mu.Unlock()
	}
	s.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if err := s.Close(ctx, id); err == nil {
			closed++
		}
	}
	if closed > 0 {
		s.log.InfoContext(ctx, "idle sessions closed",
			logger.Event("session.sweep"),
			slog.Int("count", closed),
		)
	}
	return closed
}

// RunJanitor calls Sweep on the configured interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 || s.cfg.SweepEvery <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Service) session(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// errUnchanged tells edit that fn left the session as it was.
var errUnchanged = errors.New("unchanged")

// edit runs fn under the session lock, then publishes the resulting change.
func (s *Service) edit(ctx context.Context, id string, op Op, fn func(*session) (string, error)) (State, error) {
	sess, err := s.session(id)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	blockID, err := fn(sess)
	if errors.Is(err, errUnchanged) {
		st := sess.state()
		sess.mu.Unlock()
		return st, nil
	}
	if err != nil {
		sess.mu.Unlock()
		return State{}, err
	}
	sess.dropStaleSelection()
	sess.touched = s.now()
	st := sess.state()
	ch := sess.change(op, blockID)
	sess.mu.Unlock()

	s.log.DebugContext(ctx, "session edited",
		logger.Event(string(op)),
		logger.SessionID(id),
		logger.BlockID(blockID),
	)
	s.publish(ctx, ch)
	return st, nil
}

func (s *Service) publish(ctx context.Context, ch Change) {
	if err := s.events.Publish(ctx, ch.SessionID, ch); err != nil {
		s.log.WarnContext(ctx, "change not published",
			logger.Event(string(ch.Op)),
			logger.SessionID(ch.SessionID),
			logger.Error(err),
		)
	}
}
