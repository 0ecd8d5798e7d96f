package editor

import (
	"errors"

	"github.com/dmitrymomot/mailcanvas/handler"
	"github.com/dmitrymomot/mailcanvas/pkg/document"
	"github.com/dmitrymomot/mailcanvas/svc/composer"
)

var statusErrors = []struct {
	target error
	status handler.HTTPError
}{
	{composer.ErrSessionNotFound, handler.ErrNotFound},
	{composer.ErrBlockNotFound, handler.ErrNotFound},
	{composer.ErrDocumentNotFound, handler.ErrNotFound},
	{composer.ErrTemplateNotFound, handler.ErrNotFound},
	{composer.ErrInvalidDocument, handler.ErrUnprocessableEntity},
	{composer.ErrTemplateUnavailable, handler.ErrBadGateway},
	{composer.ErrSendFailed, handler.ErrBadGateway},
	{composer.ErrSenderNotConfigured, handler.ErrServiceUnavailable},
}

// httpError maps composer errors to HTTP errors. The client sees the
// sentinel text only. Unknown errors are returned as is and end up as 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, composer.ErrInvalidDocumentName):
		return handler.ValidationError{"name": {composer.ErrInvalidDocumentName.Error()}}
	case errors.Is(err, document.ErrUnknownBlockType):
		return handler.ValidationError{"type": {document.ErrUnknownBlockType.Error()}}
	}
	for _, e := range statusErrors {
		if errors.Is(err, e.target) {
			return e.status.WithMessage("%s", e.target.Error()).Wrap(err)
		}
	}
	return err
}

func fail(err error) handler.Response { return handler.Error(httpError(err)) }
