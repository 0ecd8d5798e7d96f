// Package handler adapts typed handler functions to net/http.
//
// A HandlerFunc receives a Context and a request value that Wrap fills with
// the configured binders, and returns a Response that renders itself:
//
//	h := handler.HandlerFunc[addBlockRequest](func(ctx handler.Context, req addBlockRequest) handler.Response {
//		b, err := svc.AddBlock(ctx, req.SessionID, req.Type)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(b, handler.WithJSONStatus(http.StatusCreated))
//	})
//	r.Post("/sessions/{id}/blocks", handler.Wrap(h,
//		handler.WithBinders[addBlockRequest](binder.Path(nil), binder.JSON()),
//		handler.WithErrorHandler[addBlockRequest](errorHandler),
//	))
//
// JSON bodies use the envelope {"data", "meta", "error"}. Errors map to
// status codes through HTTPError and ValidationError. Templ renders
// components as HTML, or as datastar element patches when the request comes
// from a datastar client, and SSE keeps a datastar stream open.
package handler
