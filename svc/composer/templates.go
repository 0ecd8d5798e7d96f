package composer

import (
	"context"

	"github.com/dmitrymomot/mailcanvas/pkg/catalog"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
)

// Templates lists the built-in and user templates for the template picker.
func (s *Service) Templates(ctx context.Context) []catalog.Entry {
	if s.resolver == nil {
		return []catalog.Entry{}
	}
	return s.resolver.Listing(ctx)
}

func (s *Service) UserTemplates(ctx context.Context) []templatestore.UserTemplate {
	if s.templates == nil {
		return []templatestore.UserTemplate{}
	}
	return s.templates.List(ctx)
}

// AddTemplate stores a new user template. Empty fields get the store defaults.
func (s *Service) AddTemplate(ctx context.Context, name, html string) (templatestore.UserTemplate, error) {
	if s.templates == nil {
		return templatestore.UserTemplate{}, ErrTemplateNotFound
	}
	t := templatestore.NewTemplate(name, html)
	s.templates.Add(ctx, t)
	s.log.InfoContext(ctx, "user template added",
		logger.Event("template.add"),
		logger.TemplateID(&t.ID),
	)
	return t, nil
}

// UpdateTemplate rewrites an existing user template and notifies the sessions
// that use it.
func (s *Service) UpdateTemplate(ctx context.Context, id, name, html string) (templatestore.UserTemplate, error) {
	if s.templates == nil {
		return templatestore.UserTemplate{}, ErrTemplateNotFound
	}
	t := templatestore.UserTemplate{ID: id, Name: name, HTML: html}
	if !s.templates.Update(ctx, t) {
		return templatestore.UserTemplate{}, ErrTemplateNotFound
	}
	s.notifyTemplateUsers(ctx, catalog.UserID(id))
	return t, nil
}

// DeleteTemplate removes a user template. Unknown ids are ignored.
func (s *Service) DeleteTemplate(ctx context.Context, id string) {
	if s.templates == nil {
		return
	}
	s.templates.Delete(ctx, id)
	s.notifyTemplateUsers(ctx, catalog.UserID(id))
}

// notifyTemplateUsers publishes a template change to every session whose
// document selects templateID.
func (s *Service) notifyTemplateUsers(ctx context.Context, templateID string) {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		tid := sess.editor.Present().TemplateID
		ch := sess.change(OpTemplate, "")
		sess.mu.Unlock()
		if tid != nil && *tid == templateID {
			s.publish(ctx, ch)
		}
	}
}
