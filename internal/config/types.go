// Package config resolves Calvin's layered run configuration: built-in
// defaults, the global ~/.config/calvin/config.toml, the project's
// calvin.toml, CALVIN_* environment variables, and CLI flags, in that order of increasing precedence (spec section
// 6). The layering mechanism is adapted from the teacher's config
// package, generalized from per-profile settings to Calvin's single
// RunConfig shape.
package config

// RunConfig is the fully resolved configuration for one Calvin
// invocation. Every field is populated after Resolve returns.
type RunConfig struct {
	FormatVersion string

	Security SecurityConfig
	Targets  TargetsConfig
	Sync     SyncConfig
	Output   OutputConfig
	Layers   LayersConfig
}

// SecurityConfig controls the security policy applied during compile
// (spec section 4.13).
type SecurityConfig struct {
	// Mode is one of "yolo", "balanced", "strict". Defaults to "balanced".
	Mode string `toml:"mode"`

	// AllowNaked, when true, leaves the mandatory deny-pattern baseline
	// out of the claude-code deny list and emits a warning saying so.
	// Defaults to false.
	AllowNaked bool `toml:"allow_naked"`

	// Deny lists additional deny glob patterns layered on top of the
	// mode's built-in minimum.
	Deny []string `toml:"deny"`

	// DenyExclude lists glob patterns exempted from the deny list.
	DenyExclude []string `toml:"deny_exclude"`

	MCP MCPSecurityConfig `toml:"mcp"`
}

// MCPSecurityConfig is a plain string-prefix allowlist for MCP-looking
// tool identifiers in allowed-tools. Calvin never speaks the MCP
// protocol itself.
type MCPSecurityConfig struct {
	Allowlist           []string `toml:"allowlist"`
	AdditionalAllowlist []string `toml:"additional_allowlist"`
}

// TargetsConfig selects which concrete targets a run compiles for.
type TargetsConfig struct {
	// Enabled lists the active targets. Absent means "all concrete
	// targets"; present-but-empty means no targets (a no-op run).
	Enabled []string `toml:"enabled"`

	// EnabledSet distinguishes "absent" from "present but empty", since a
	// plain nil slice can't carry that distinction once env/flag layers
	// are merged on top.
	EnabledSet bool `toml:"-"`
}

// SyncConfig controls how the executor writes compiled output.
type SyncConfig struct {
	AtomicWrites    bool `toml:"atomic_writes"`
	RespectLockfile bool `toml:"respect_lockfile"`
}

// OutputConfig controls diagnostic verbosity.
type OutputConfig struct {
	// Verbosity is one of "quiet", "normal", "verbose", "debug".
	Verbosity string `toml:"verbosity"`
}

// LayersConfig lists additional PromptPack source layers beyond the
// implicit project and user layers.
type LayersConfig struct {
	Additional []string `toml:"additional"`
}
