package composer

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrBlockNotFound       = errors.New("block not found")
	ErrInvalidDocument     = errors.New("invalid JSON")
	ErrInvalidDocumentName = errors.New("invalid document name")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrTemplateUnavailable = errors.New("template could not be loaded")
	ErrSenderNotConfigured = errors.New("e-mail sender is not configured")
	ErrSendFailed          = errors.New("failed to send test e-mail")
	ErrStorageFailed       = errors.New("document storage failed")
)
