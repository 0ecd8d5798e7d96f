package document

import "errors"

var (
	// ErrUnknownBlockType is returned when a block of an unsupported kind is requested.
	ErrUnknownBlockType = errors.New("unknown block type")
	// ErrInvalidDocument is returned when a document file cannot be decoded.
	ErrInvalidDocument = errors.New("invalid document")
)
