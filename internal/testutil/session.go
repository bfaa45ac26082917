package testutil

// FixedSessionGenerator returns the same session ID every time.
//
// Result IDs are scoped to the session, so a fixed session makes traces
// byte-identical across runs and comparable with golden files.
//
// Thread-safety: stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// DefaultSessionID is used when no session ID is given.
const DefaultSessionID = "test-session-default"

// NewFixedSessionGenerator creates a generator for id, or DefaultSessionID
// when id is empty.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
//
// Implements engine.SessionIDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
