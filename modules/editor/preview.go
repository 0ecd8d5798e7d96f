package editor

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailcanvas/handler"
	"github.com/dmitrymomot/mailcanvas/pkg/clientip"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/ratelimiter"
	"github.com/dmitrymomot/mailcanvas/pkg/render"
	"github.com/dmitrymomot/mailcanvas/pkg/validator"
	"github.com/dmitrymomot/mailcanvas/svc/composer"
)

func (m *Module) preview(ctx handler.Context, req sessionRequest) handler.Response {
	tpl, st, err := m.svc.Template(ctx, req.SessionID)
	if err != nil {
		return fail(err)
	}
	return handler.Templ(render.Component(tpl, st.Document))
}

// previewStream keeps a datastar stream open and patches the preview frame
// and the history signals after every change of the session.
func (m *Module) previewStream(ctx handler.Context, req sessionRequest) handler.Response {
	if !handler.IsDataStar(ctx.Request()) {
		return handler.Error(handler.ErrBadRequest.WithMessage("endpoint requires a datastar stream"))
	}
	sub, err := m.svc.Subscribe(ctx, req.SessionID)
	if err != nil {
		return fail(err)
	}
	return handler.SSE(func(sc handler.StreamContext) error {
		defer sub.Close()

		if done, err := m.pushPreview(sc, req.SessionID); done || err != nil {
			return err
		}
		for {
			select {
			case <-sc.Done():
				return nil
			case msg, ok := <-sub.Receive():
				if !ok || msg.Data.Closed() {
					return nil
				}
				if done, err := m.pushPreview(sc, req.SessionID); done || err != nil {
					return err
				}
			}
		}
	})
}

// pushPreview sends the current frame and signals. It reports done when the
// session no longer exists.
func (m *Module) pushPreview(sc handler.StreamContext, id string) (bool, error) {
	tpl, st, err := m.svc.Template(sc, id)
	switch {
	case errors.Is(err, composer.ErrSessionNotFound):
		return true, nil
	case err != nil:
		m.log.WarnContext(sc, "preview not refreshed",
			logger.Event("preview.stream"),
			logger.SessionID(id),
			logger.Error(err),
		)
		return false, nil
	}

	if err := sc.SendComponent(render.Frame(m.previewID, tpl, st.Document)); err != nil {
		return true, err
	}
	return false, sc.SendSignals(map[string]any{
		"canUndo":         st.CanUndo,
		"canRedo":         st.CanRedo,
		"selectedBlockId": st.SelectedBlockID,
		"canvasWidth":     st.Document.CanvasWidth,
	})
}

type sendRequest struct {
	SessionID string `path:"id" json:"-"`
	To        string `json:"to"`
}

func (m *Module) sendTest(ctx handler.Context, req sendRequest) handler.Response {
	if err := handler.Validate(
		validator.RequiredString("to", req.To),
		validator.ValidEmail("to", req.To),
	); err != nil {
		return handler.Error(err)
	}
	if err := m.svc.SendTest(ctx, req.SessionID, req.To); err != nil {
		return fail(err)
	}
	return handler.JSON(map[string]string{"status": "sent", "to": req.To})
}

var sendKey = ratelimiter.Composite(
	func(r *http.Request) string { return chi.URLParam(r, "id") },
	func(r *http.Request) string { return clientip.FromContext(r.Context()) },
)

// limitSends rejects test sends over the module's limit with 429.
func limitSends(m *Module) handler.Decorator[sendRequest] {
	return func(next handler.HandlerFunc[sendRequest]) handler.HandlerFunc[sendRequest] {
		if m.sendLimiter == nil {
			return next
		}
		return func(ctx handler.Context, req sendRequest) handler.Response {
			res, err := m.sendLimiter.Allow(ctx, sendKey(ctx.Request()))
			if err != nil {
				m.log.WarnContext(ctx, "send limiter failed", logger.Error(err))
				return next(ctx, req)
			}
			ratelimiter.Headers(ctx.ResponseWriter(), res, m.now())
			if !res.Allowed() {
				return handler.Error(handler.ErrTooManyRequests.WithMessage("too many test sends"))
			}
			return next(ctx, req)
		}
	}
}
