package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail indicates an insert violated the unique index on
	// normalized email.
	ErrDuplicateEmail = errors.New("repository: duplicate email")
)
