package database

import "errors"

// ErrVersionConflict is returned by versioned updates when the row changed
// since it was read. Callers surface it for a manual retry; there is no
// automatic backoff.
var ErrVersionConflict = errors.New("version conflict")
