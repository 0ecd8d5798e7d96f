package editor

import (
	"net/http"

	"github.com/dmitrymomot/mailcanvas/handler"
	"github.com/dmitrymomot/mailcanvas/pkg/validator"
)

func (m *Module) listTemplates(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(m.svc.Templates(ctx))
}

func (m *Module) listUserTemplates(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(m.svc.UserTemplates(ctx))
}

type templateRequest struct {
	TemplateID string `path:"templateID" json:"-"`
	Name       string `json:"name"`
	HTML       string `json:"html"`
}

func (m *Module) addTemplate(ctx handler.Context, req templateRequest) handler.Response {
	if err := handler.Validate(validator.MaxLenString("name", req.Name, 100)); err != nil {
		return handler.Error(err)
	}
	t, err := m.svc.AddTemplate(ctx, req.Name, req.HTML)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(t, handler.WithJSONStatus(http.StatusCreated))
}

func (m *Module) updateTemplate(ctx handler.Context, req templateRequest) handler.Response {
	if err := handler.Validate(
		validator.RequiredString("name", req.Name),
		validator.MaxLenString("name", req.Name, 100),
	); err != nil {
		return handler.Error(err)
	}
	t, err := m.svc.UpdateTemplate(ctx, req.TemplateID, req.Name, req.HTML)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(t)
}

func (m *Module) deleteTemplate(ctx handler.Context, req templateRequest) handler.Response {
	m.svc.DeleteTemplate(ctx, req.TemplateID)
	return handler.Empty()
}
