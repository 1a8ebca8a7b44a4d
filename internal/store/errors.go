package store

import "errors"

// ErrNotFound is returned when no account matches the requested ID.
var ErrNotFound = errors.New("store: account not found")
