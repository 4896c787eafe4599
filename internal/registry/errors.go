package registry

import (
	"errors"
)

var (
	// ErrInvalidInput is returned when a required argument is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a referenced file or folder does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a folder key is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrStoreFailure is returned when the write-through to durable storage
	// fails. The in-memory change has already been applied and is kept.
	ErrStoreFailure = errors.New("store failure")
)
