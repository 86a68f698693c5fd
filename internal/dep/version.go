package dep

// Version constants for the on-disk graph format and engine.
const (
	// GraphFormatVersion is the serialized dep-graph format version.
	// Bump on any change to the binary layout; readers discard graphs
	// written under a different version.
	GraphFormatVersion uint32 = 1

	// EngineVersion is the verdant engine version.
	EngineVersion = "0.1.0"
)
