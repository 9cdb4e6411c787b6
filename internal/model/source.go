package model

// Source identifies which configuration layer provided a resolved value.
// Higher values indicate higher precedence. Grounded on the teacher's
// config.Source/SourceMap, reused verbatim for Calvin's configuration
// resolver (spec section 6).
type Source int

const (
	// SourceDefault is the built-in fallback (lowest precedence).
	SourceDefault Source = iota
	// SourceGlobal is ~/.config/calvin/config.toml.
	SourceGlobal
	// SourceProject is the project-local calvin.toml.
	SourceProject
	// SourceEnv is a CALVIN_* environment variable override.
	SourceEnv
	// SourceFlag is an explicit CLI flag (highest precedence).
	SourceFlag
)

// String returns the human-readable name of the source.
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceGlobal:
		return "global"
	case SourceProject:
		return "project"
	case SourceEnv:
		return "env"
	case SourceFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// SourceMap tracks where each resolved configuration field originated.
// Keys are flat field names, e.g. "security.mode", "targets.enabled".
type SourceMap map[string]Source
