package ir

// Versions recorded with every session. A replay compares traces only
// between sessions of the same TraceVersion.
const (
	// TraceVersion changes whenever the canonical event layout changes.
	TraceVersion = "1"

	// EngineVersion changes whenever judging rules change.
	EngineVersion = "0.1.0"
)
