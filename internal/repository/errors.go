package repository

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicate reports a unique key collision, such as reissuing an
	// existing token hash.
	ErrDuplicate = errors.New("duplicate")
)
