package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrymomot/mailcanvas/pkg/file"
)

// EmailSender delivers a message.
type EmailSender interface {
	SendEmail(ctx context.Context, msg Message) error
}

// Message is a single HTML e-mail.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"-"`
	Tag     string `json:"tag,omitempty"`
}

// Validate checks the recipient address and that a body is present.
func (m Message) Validate() error {
	var errs []error
	if strings.TrimSpace(m.To) == "" {
		errs = append(errs, errors.New("recipient is required"))
	} else if _, err := mail.ParseAddress(m.To); err != nil {
		errs = append(errs, fmt.Errorf("recipient %q: %w", m.To, err))
	}
	if strings.TrimSpace(m.HTML) == "" {
		errs = append(errs, errors.New("html body is required"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidMessage}, errs...)...)
	}
	return nil
}

// New builds the sender named by cfg.Driver. storage backs the dev driver.
func New(cfg Config, storage file.Storage) (EmailSender, error) {
	switch cfg.Driver {
	case DriverPostmark:
		s, err := NewPostmarkSender(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverDev, "":
		if storage == nil {
			return nil, fmt.Errorf("%w: dev driver needs storage", ErrInvalidConfig)
		}
		return NewDevSender(storage, cfg.DevDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
