package editor

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/mailcanvas/handler"
	"github.com/dmitrymomot/mailcanvas/pkg/document"
	"github.com/dmitrymomot/mailcanvas/pkg/validator"
)

func (m *Module) export(ctx handler.Context, req sessionRequest) handler.Response {
	data, err := m.svc.Export(ctx, req.SessionID)
	if err != nil {
		return fail(err)
	}
	return handler.Attachment(document.FileName, "application/json", data)
}

// importDocument reads the raw body so that malformed JSON is reported as an
// invalid document instead of a bad request.
func (m *Module) importDocument(ctx handler.Context, req sessionRequest) handler.Response {
	r := ctx.Request()
	body, err := io.ReadAll(http.MaxBytesReader(ctx.ResponseWriter(), r.Body, m.importLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return handler.Error(handler.ErrBadRequest.WithMessage("document exceeds %d bytes", m.importLimit))
		}
		return handler.Error(handler.ErrBadRequest.Wrap(err))
	}
	return state(m.svc.Import(ctx, req.SessionID, body))
}

type documentRequest struct {
	SessionID string `path:"id" json:"-"`
	Name      string `json:"name"`
}

func (r documentRequest) validate() error {
	return handler.Validate(
		validator.RequiredString("name", r.Name),
		validator.MaxLenString("name", r.Name, 100),
		validator.ValidFileName("name", r.Name),
	)
}

type savedResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (m *Module) saveDocument(ctx handler.Context, req documentRequest) handler.Response {
	if err := req.validate(); err != nil {
		return handler.Error(err)
	}
	key, err := m.svc.SaveDocument(ctx, req.SessionID, req.Name)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(savedResponse{Name: req.Name, Path: key}, handler.WithJSONStatus(http.StatusCreated))
}

func (m *Module) loadDocument(ctx handler.Context, req documentRequest) handler.Response {
	if err := req.validate(); err != nil {
		return handler.Error(err)
	}
	return state(m.svc.LoadDocument(ctx, req.SessionID, req.Name))
}

func (m *Module) listDocuments(ctx handler.Context, _ struct{}) handler.Response {
	names, err := m.svc.Documents(ctx)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(names)
}
