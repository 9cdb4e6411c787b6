package config

// DefaultRunConfig returns a new RunConfig populated with Calvin's
// built-in defaults (spec section 6). Used as the base layer when no
// calvin.toml is present and as the fallback for any field a config file
// leaves unset.
//
// Callers receive a fresh copy each time; mutating the returned value
// does not affect subsequent calls.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		FormatVersion: "1.0",
		Security: SecurityConfig{
			Mode:       "balanced",
			AllowNaked: false,
		},
		Targets: TargetsConfig{
			Enabled:    nil,
			EnabledSet: false,
		},
		Sync: SyncConfig{
			AtomicWrites:    true,
			RespectLockfile: true,
		},
		Output: OutputConfig{
			Verbosity: "normal",
		},
		Layers: LayersConfig{
			Additional: nil,
		},
	}
}
