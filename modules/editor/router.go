package editor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is a module that serves its own routes.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures the application router. Every field is optional.
type RouterOptions struct {
	Editor      Mountable
	Health      http.Handler
	Middlewares []func(http.Handler) http.Handler
}

// Router builds the application router.
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(opts.Middlewares...)

	if opts.Health != nil {
		r.Method(http.MethodGet, "/healthz", opts.Health)
	}
	if opts.Editor != nil {
		r.Mount("/", opts.Editor.Handle())
	}
	return r
}
