package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

const (
	dataStarAccept     = "text/event-stream"
	dataStarQueryParam = "datastar"
)

// Patch modes.
const (
	PatchOuter   = datastar.ElementPatchModeOuter
	PatchInner   = datastar.ElementPatchModeInner
	PatchReplace = datastar.ElementPatchModeReplace
	PatchAppend  = datastar.ElementPatchModeAppend
)

// IsDataStar reports whether r was sent by a datastar client.
func IsDataStar(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), dataStarAccept) {
		return true
	}
	return r.URL.Query().Has(dataStarQueryParam)
}

// TemplComponent matches templ.Component.
type TemplComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// TemplOption configures an element patch.
type TemplOption = datastar.PatchElementOption

// WithTarget sets the CSS selector a patch applies to.
func WithTarget(selector string) TemplOption { return datastar.WithSelector(selector) }

// WithPatchMode sets how a patch merges into the DOM.
func WithPatchMode(mode datastar.ElementPatchMode) TemplOption { return datastar.WithMode(mode) }

type templResponse struct {
	component TemplComponent
	options   []TemplOption
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		return datastar.NewSSE(w, r).PatchElementTempl(t.component, t.options...)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.component.Render(r.Context(), w)
}

// Templ renders component as HTML, or as an element patch for datastar
// requests.
func Templ(component TemplComponent, opts ...TemplOption) Response {
	return templResponse{component: component, options: opts}
}
