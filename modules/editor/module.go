package editor

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailcanvas/handler"
	"github.com/dmitrymomot/mailcanvas/pkg/binder"
	"github.com/dmitrymomot/mailcanvas/pkg/broadcast"
	"github.com/dmitrymomot/mailcanvas/pkg/catalog"
	"github.com/dmitrymomot/mailcanvas/pkg/document"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/ratelimiter"
	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
	"github.com/dmitrymomot/mailcanvas/svc/composer"
)

// Composer is the composer service used by the module.
type Composer interface {
	Create(ctx context.Context, doc *document.Document) composer.State
	Get(ctx context.Context, id string) (composer.State, error)
	Close(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (broadcast.Subscriber[composer.Change], error)

	AddBlock(ctx context.Context, id string, t document.BlockType) (document.Block, composer.State, error)
	UpdateBlock(ctx context.Context, id, blockID string, patch document.BlockPatch) (composer.State, error)
	DeleteBlock(ctx context.Context, id, blockID string) (composer.State, error)
	MoveBlock(ctx context.Context, id string, from, to int) (composer.State, error)
	SetBlocks(ctx context.Context, id string, blocks []document.Block) (composer.State, error)
	Select(ctx context.Context, id string, blockID *string) (composer.State, error)
	ApplySettings(ctx context.Context, id string, settings document.Settings) (composer.State, error)
	Undo(ctx context.Context, id string) (composer.State, error)
	Redo(ctx context.Context, id string) (composer.State, error)

	Template(ctx context.Context, id string) (string, composer.State, error)
	SendTest(ctx context.Context, id, to string) error

	Export(ctx context.Context, id string) ([]byte, error)
	Import(ctx context.Context, id string, data []byte) (composer.State, error)
	SaveDocument(ctx context.Context, id, name string) (string, error)
	LoadDocument(ctx context.Context, id, name string) (composer.State, error)
	Documents(ctx context.Context) ([]string, error)

	Templates(ctx context.Context) []catalog.Entry
	UserTemplates(ctx context.Context) []templatestore.UserTemplate
	AddTemplate(ctx context.Context, name, html string) (templatestore.UserTemplate, error)
	UpdateTemplate(ctx context.Context, id, name, html string) (templatestore.UserTemplate, error)
	DeleteTemplate(ctx context.Context, id string)
}

var _ Composer = (*composer.Service)(nil)

// DefaultPreviewID is the element id of the live preview iframe.
const DefaultPreviewID = "preview"

// Module serves the editor API.
type Module struct {
	svc          Composer
	log          *slog.Logger
	errorHandler handler.ErrorHandler
	previewID    string
	importLimit  int64
	sendLimiter  Limiter
	now          func() time.Time
}

// Limiter throttles test sends.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimiter.Result, error)
}

type Option func(*Module)

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.log = l
		}
	}
}

// WithErrorHandler replaces the JSON error handler.
func WithErrorHandler(h handler.ErrorHandler) Option {
	return func(m *Module) { m.errorHandler = h }
}

// WithPreviewID sets the element id patched by the live preview stream.
func WithPreviewID(id string) Option {
	return func(m *Module) {
		if id != "" {
			m.previewID = id
		}
	}
}

// WithImportLimit caps the size of imported document bodies.
func WithImportLimit(n int64) Option {
	return func(m *Module) {
		if n > 0 {
			m.importLimit = n
		}
	}
}

// WithSendLimiter throttles test sends per session and client address.
func WithSendLimiter(l Limiter) Option {
	return func(m *Module) { m.sendLimiter = l }
}

func New(svc Composer, opts ...Option) *Module {
	m := &Module{
		svc:         svc,
		log:         slog.Default(),
		previewID:   DefaultPreviewID,
		importLimit: binder.DefaultMaxJSONSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("editor"))
	if m.errorHandler == nil {
		m.errorHandler = handler.NewErrorHandler(m.log)
	}
	return m
}

// Handle returns the editor routes.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", wrap(m, m.createSession, optionalJSON()))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", wrap(m, m.getSession, pathParams()))
			r.Delete("/", wrap(m, m.closeSession, pathParams()))

			r.Post("/blocks", wrap(m, m.addBlock, binder.JSON(), pathParams()))
			r.Put("/blocks", wrap(m, m.setBlocks, binder.JSON(), pathParams()))
			r.Post("/blocks/move", wrap(m, m.moveBlock, binder.JSON(), pathParams()))
			r.Patch("/blocks/{blockID}", wrap(m, m.updateBlock, binder.JSON(), pathParams()))
			r.Delete("/blocks/{blockID}", wrap(m, m.deleteBlock, pathParams()))

			r.Post("/select", wrap(m, m.selectBlock, binder.JSON(), pathParams()))
			r.Patch("/settings", wrap(m, m.applySettings, binder.JSON(), pathParams()))
			r.Post("/undo", wrap(m, m.undo, pathParams()))
			r.Post("/redo", wrap(m, m.redo, pathParams()))

			r.Get("/preview", wrap(m, m.preview, pathParams()))
			r.Get("/preview/stream", wrap(m, m.previewStream, pathParams()))
			r.Post("/send", handler.Wrap(m.sendTest,
				handler.WithBinders[sendRequest](binder.JSON(), pathParams()),
				handler.WithErrorHandler[sendRequest](m.errorHandler),
				handler.WithDecorators(limitSends(m)),
			))

			r.Get("/export", wrap(m, m.export, pathParams()))
			r.Post("/import", wrap(m, m.importDocument, pathParams()))
			r.Post("/save", wrap(m, m.saveDocument, binder.JSON(), pathParams()))
			r.Post("/load", wrap(m, m.loadDocument, binder.JSON(), pathParams()))
		})
	})

	r.Get("/documents", wrap(m, m.listDocuments))

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", wrap(m, m.listTemplates))
		r.Get("/user", wrap(m, m.listUserTemplates))
		r.Post("/user", wrap(m, m.addTemplate, binder.JSON()))
		r.Put("/user/{templateID}", wrap(m, m.updateTemplate, binder.JSON(), pathParams()))
		r.Delete("/user/{templateID}", wrap(m, m.deleteTemplate, pathParams()))
	})

	return r
}

// wrap binds R with the given binders and routes failures through the
// module's error handler.
func wrap[R any](m *Module, h handler.HandlerFunc[R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[R](binders...),
		handler.WithErrorHandler[R](m.errorHandler),
	)
}

func pathParams() handler.Bind { return binder.Path(nil) }

// optionalJSON is binder.JSON for requests that may come without a body.
func optionalJSON() handler.Bind {
	bind := binder.JSON()
	return func(r *http.Request, v any) error {
		if r.ContentLength == 0 && r.Header.Get("Content-Type") == "" {
			return nil
		}
		return bind(r, v)
	}
}
