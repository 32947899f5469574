package domain

import "errors"

// ErrInvalidRequest is returned when a turn carries neither text nor
// attachments, or a required field is missing. It is checked before any
// session lookup and before any side effect.
var ErrInvalidRequest = errors.New("missing message or file")

// ErrNotFound is returned when a session is absent, soft-deleted, or owned by
// a different user. Callers never learn which of the three it was.
var ErrNotFound = errors.New("session not found")
