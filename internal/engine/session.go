package engine

import (
	"github.com/google/uuid"
)

// SessionIDGenerator names gameplay sessions. Result IDs are scoped to a
// session, so fixed IDs make traces reproducible.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session IDs.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
