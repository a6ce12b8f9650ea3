package ir

// Version constants for the definition schema and the engine.
const (
	// IRVersion is the definition schema version.
	IRVersion = "1"

	// EngineVersion is the enums engine version.
	EngineVersion = "0.1.0"
)
