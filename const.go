package match

const (
	// EngineVersion is the current version of the matching engine
	EngineVersion = "v1.0.0"
)
