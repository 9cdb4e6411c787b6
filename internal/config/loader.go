package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadFromFile reads and parses calvin.toml at path. Unknown TOML keys
// produce slog warnings rather than errors, since the spec requires
// forward-compatible "unknown key" reporting rather than hard failure
// (spec section 6).
func LoadFromFile(path string) (*RunConfig, error) {
	var raw rawConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	warnUndecodedKeys(meta, path)

	return raw.toRunConfig(), nil
}

// LoadFromString parses calvin.toml content from an in-memory string. The
// name parameter is used only in log messages and error output.
func LoadFromString(data, name string) (*RunConfig, error) {
	var raw rawConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}

	warnUndecodedKeys(meta, name)

	return raw.toRunConfig(), nil
}

// rawConfig mirrors calvin.toml's on-disk shape exactly, including the
// nested targets.enabled distinction between "absent" and "present but
// empty" (the toml package reports absence via the Undecoded/decode path,
// so a presence flag is tracked separately during resolution rather than
// here).
type rawConfig struct {
	Format  rawFormat      `toml:"format"`
	Security SecurityConfig `toml:"security"`
	Targets  TargetsConfig  `toml:"targets"`
	Sync     SyncConfig     `toml:"sync"`
	Output   OutputConfig   `toml:"output"`
	Layers   LayersConfig   `toml:"layers"`
}

type rawFormat struct {
	Version string `toml:"version"`
}

func (r *rawConfig) toRunConfig() *RunConfig {
	return &RunConfig{
		FormatVersion: r.Format.Version,
		Security:      r.Security,
		Targets:       r.Targets,
		Sync:          r.Sync,
		Output:        r.Output,
		Layers:        r.Layers,
	}
}

// warnUndecodedKeys logs a warning for each TOML key that did not map to
// any known RunConfig field, keeping config files forward-compatible
// across Calvin versions instead of failing hard on an unrecognized key.
func warnUndecodedKeys(meta toml.MetaData, source string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}

	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}

	slog.Warn("unknown config keys will be ignored",
		"source", source,
		"keys", strings.Join(keys, ", "),
	)
}
