package logger

import (
	"log/slog"
	"time"
)

// Error returns an "error" attribute, or an empty one for a nil error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID returns a "request_id" attribute, or an empty one for "".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}

func BlockID(id string) slog.Attr {
	return slog.String("block_id", id)
}

// TemplateID returns a "template_id" attribute. A nil id is logged as "".
func TemplateID(id *string) slog.Attr {
	if id == nil {
		return slog.String("template_id", "")
	}
	return slog.String("template_id", *id)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
