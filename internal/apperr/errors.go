// Package apperr holds sentinel errors shared across layers. Handlers map
// them to status codes with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrBackend       = errors.New("backend unavailable")
)
