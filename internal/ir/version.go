package ir

// Version constants for the IR schema and toolkit.
const (
	// IRVersion is the scene table IR schema version.
	IRVersion = "1"

	// ToolVersion is the changeprob toolkit version.
	ToolVersion = "0.3.0"
)
