package composer

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/mailcanvas/pkg/email"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/render"
)

// Template returns the session state together with the HTML of the template
// it selects. The HTML is empty when no template is selected.
func (s *Service) Template(ctx context.Context, id string) (string, State, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return "", State{}, err
	}
	if s.resolver == nil {
		return "", st, nil
	}
	html, err := s.resolver.Resolve(ctx, st.Document.TemplateID)
	if err != nil {
		return "", State{}, errors.Join(ErrTemplateUnavailable, err)
	}
	return html, st, nil
}

// Preview renders the session document into its template.
func (s *Service) Preview(ctx context.Context, id string) (string, error) {
	tpl, st, err := s.Template(ctx, id)
	if err != nil {
		return "", err
	}
	return render.Render(tpl, st.Document), nil
}

// SendTest renders the session document and sends it to one recipient.
// The document title is used as the subject.
func (s *Service) SendTest(ctx context.Context, id, to string) error {
	if s.sender == nil {
		return ErrSenderNotConfigured
	}
	tpl, st, err := s.Template(ctx, id)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.sender.SendEmail(ctx, email.Message{
		To:      to,
		Subject: st.Document.TitleText,
		HTML:    render.Render(tpl, st.Document),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "test e-mail failed",
			logger.Event("email.send"),
			logger.SessionID(id),
			logger.Error(err),
		)
		return errors.Join(ErrSendFailed, err)
	}
	s.log.InfoContext(ctx, "test e-mail sent",
		logger.Event("email.send"),
		logger.SessionID(id),
		logger.Duration(time.Since(start)),
	)
	return nil
}
