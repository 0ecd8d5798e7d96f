package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/mrz1836/postmark"
)

// PostmarkAPI is the subset of *postmark.Client used by PostmarkSender.
type PostmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender sends through Postmark's transactional API.
type PostmarkSender struct {
	api     PostmarkAPI
	from    string
	replyTo string
	tag     string
}

// NewPostmarkSender validates cfg and returns a sender.
func NewPostmarkSender(cfg Config) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" || cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: postmark tokens are required", ErrInvalidConfig)
	}
	return newPostmarkSender(postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken), cfg)
}

// NewPostmarkSenderWithAPI uses a preconfigured client.
func NewPostmarkSenderWithAPI(api PostmarkAPI, cfg Config) (*PostmarkSender, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: postmark client is nil", ErrInvalidConfig)
	}
	return newPostmarkSender(api, cfg)
}

func newPostmarkSender(api PostmarkAPI, cfg Config) (*PostmarkSender, error) {
	if _, err := mail.ParseAddress(cfg.SenderEmail); err != nil {
		return nil, fmt.Errorf("%w: sender email: %v", ErrInvalidConfig, err)
	}
	if cfg.ReplyTo != "" {
		if _, err := mail.ParseAddress(cfg.ReplyTo); err != nil {
			return nil, fmt.Errorf("%w: reply-to: %v", ErrInvalidConfig, err)
		}
	}
	return &PostmarkSender{
		api:     api,
		from:    cfg.SenderEmail,
		replyTo: cfg.ReplyTo,
		tag:     cfg.Tag,
	}, nil
}

// SendEmail sends msg. Tracking stays off for test sends.
func (s *PostmarkSender) SendEmail(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	tag := msg.Tag
	if tag == "" {
		tag = s.tag
	}

	resp, err := s.api.SendEmail(ctx, postmark.Email{
		From:     s.from,
		ReplyTo:  s.replyTo,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      tag,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
