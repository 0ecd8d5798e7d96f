package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/requestid"
)

// NewErrorHandler returns an ErrorHandler that logs err and writes a JSON
// envelope. Client errors log at warn level, server errors at error level.
// The request id is returned in meta.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		status, _ := errorDetail(err)

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		id := requestid.FromContext(r.Context())
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(id),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		var opts []JSONOption
		if id != "" {
			opts = append(opts, WithJSONMeta(map[string]any{"request_id": id}))
		}
		if rerr := JSONError(err, opts...).Render(ctx.ResponseWriter(), r); rerr != nil {
			log.ErrorContext(r.Context(), "failed to write error response", logger.Error(rerr))
		}
	}
}
