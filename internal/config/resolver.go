package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"

	"github.com/64andrewwalker/calvin/internal/model"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// ProjectDir is the directory to search for calvin.toml.
	// Defaults to "." if empty.
	ProjectDir string

	// GlobalConfigPath overrides the default ~/.config/calvin/config.toml.
	// Useful for testing.
	GlobalConfigPath string

	// CLIFlags holds explicit CLI flag overrides (highest precedence).
	// Keys are flat RunConfig field names: "security.mode",
	// "targets.enabled", etc.
	CLIFlags map[string]any
}

// ResolvedConfig is the result of multi-source configuration resolution.
type ResolvedConfig struct {
	Config  *RunConfig
	Sources model.SourceMap
}

// Resolve runs the 5-layer configuration resolution pipeline:
//  1. Built-in defaults
//  2. Global config (~/.config/calvin/config.toml)
//  3. Project config (calvin.toml in ProjectDir)
//  4. Environment variables (CALVIN_* prefix)
//  5. CLI flags (highest precedence)
//
// Missing config files are silently skipped. Invalid TOML syntax returns
// an error; invalid enumerated values are reported separately by
// Validate rather than failing resolution.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	slog.Debug("resolving config", "projectDir", opts.ProjectDir)

	k := koanf.New(".")
	sources := make(model.SourceMap)

	defaults := DefaultRunConfig()
	if err := loadLayer(k, runConfigToFlatMap(defaults), sources, model.SourceDefault); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			globalPath = filepath.Join(home, ".config", "calvin", "config.toml")
		}
	}
	if globalPath != "" {
		if err := loadFileLayer(k, globalPath, sources, model.SourceGlobal); err != nil {
			return nil, err
		}
	}

	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}
	projectPath := filepath.Join(projectDir, "calvin.toml")
	if err := loadFileLayer(k, projectPath, sources, model.SourceProject); err != nil {
		return nil, err
	}

	envMap := buildEnvMap()
	if len(envMap) > 0 {
		if err := loadLayer(k, envMap, sources, model.SourceEnv); err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	if len(opts.CLIFlags) > 0 {
		if err := loadLayer(k, opts.CLIFlags, sources, model.SourceFlag); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	final := flatMapToRunConfig(k)

	slog.Debug("config resolved",
		"securityMode", final.Security.Mode,
		"verbosity", final.Output.Verbosity,
	)

	return &ResolvedConfig{Config: final, Sources: sources}, nil
}

// loadFileLayer loads calvin.toml at path, merging its explicitly-set
// fields into k and recording source attribution. A missing file is
// silently skipped.
func loadFileLayer(k *koanf.Koanf, path string, sources model.SourceMap, src model.Source) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var raw rawConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	warnUndecodedKeys(meta, path)

	flat := runConfigToFlatMap(raw.toRunConfig())

	// Only keys the TOML file declares are merged, so an absent key
	// never overwrites a lower layer with its zero value.
	for key := range flat {
		if !meta.IsDefined(strings.Split(key, ".")...) {
			delete(flat, key)
		}
	}

	// targets.enabled is only present in the flat map when the raw TOML
	// actually declared a [targets] table with an enabled key; otherwise
	// it would wrongly overwrite a lower layer with an empty slice.
	if tomlHasTargetsEnabled(meta) {
		flat["targets.enabled"] = raw.Targets.Enabled
		flat["targets.enabled_set"] = true
	}

	slog.Debug("loading config layer", "path", path, "source", src.String())
	return loadLayer(k, flat, sources, src)
}

func tomlHasTargetsEnabled(meta toml.MetaData) bool {
	for _, k := range meta.Keys() {
		if k.String() == "targets.enabled" {
			return true
		}
	}
	return false
}

// loadLayer merges a flat map into k and marks every key as originating
// from src, so that source attribution is correct even when a later
// layer supplies the same value as an earlier one.
func loadLayer(k *koanf.Koanf, m map[string]any, sources model.SourceMap, src model.Source) error {
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merge layer %s: %w", src.String(), err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

func runConfigToFlatMap(c *RunConfig) map[string]any {
	m := map[string]any{
		"security.mode":                  c.Security.Mode,
		"security.allow_naked":           c.Security.AllowNaked,
		"security.deny":                  c.Security.Deny,
		"security.deny_exclude":          c.Security.DenyExclude,
		"security.mcp.allowlist":         c.Security.MCP.Allowlist,
		"security.mcp.additional_allowlist": c.Security.MCP.AdditionalAllowlist,

		"sync.atomic_writes":    c.Sync.AtomicWrites,
		"sync.respect_lockfile": c.Sync.RespectLockfile,

		"output.verbosity": c.Output.Verbosity,

		"layers.additional": c.Layers.Additional,
	}
	if c.Targets.EnabledSet {
		m["targets.enabled"] = c.Targets.Enabled
		m["targets.enabled_set"] = true
	}
	return m
}

func flatMapToRunConfig(k *koanf.Koanf) *RunConfig {
	enabledSet := k.Exists("targets.enabled_set")
	return &RunConfig{
		FormatVersion: "1.0",
		Security: SecurityConfig{
			Mode:       k.String("security.mode"),
			AllowNaked: k.Bool("security.allow_naked"),
			Deny:       k.Strings("security.deny"),
			DenyExclude: k.Strings("security.deny_exclude"),
			MCP: MCPSecurityConfig{
				Allowlist:           k.Strings("security.mcp.allowlist"),
				AdditionalAllowlist: k.Strings("security.mcp.additional_allowlist"),
			},
		},
		Targets: TargetsConfig{
			Enabled:    k.Strings("targets.enabled"),
			EnabledSet: enabledSet,
		},
		Sync: SyncConfig{
			AtomicWrites:    k.Bool("sync.atomic_writes"),
			RespectLockfile: k.Bool("sync.respect_lockfile"),
		},
		Output: OutputConfig{
			Verbosity: k.String("output.verbosity"),
		},
		Layers: LayersConfig{
			Additional: k.Strings("layers.additional"),
		},
	}
}
