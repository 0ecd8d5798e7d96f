package catalog

import "errors"

var (
	ErrInvalidCatalog = errors.New("invalid template catalog")
	ErrFetchTemplate  = errors.New("failed to fetch template")
)
