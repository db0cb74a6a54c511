// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrReleased is returned by archive reads after Close.
	ErrReleased = errors.New("archive released")
)
