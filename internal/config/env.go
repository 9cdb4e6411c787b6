package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable name constants for CALVIN_ prefixed overrides
// (spec section 6).
const (
	// EnvSecurityMode overrides security.mode.
	EnvSecurityMode = "CALVIN_SECURITY_MODE"
	// EnvTargets overrides targets.enabled (comma-separated).
	EnvTargets = "CALVIN_TARGETS"
	// EnvVerbosity overrides output.verbosity.
	EnvVerbosity = "CALVIN_VERBOSITY"
	// EnvAtomicWrites overrides sync.atomic_writes.
	EnvAtomicWrites = "CALVIN_ATOMIC_WRITES"
	// EnvLogFormat overrides the log output format (not a RunConfig field).
	EnvLogFormat = "CALVIN_LOG_FORMAT"
	// EnvDebug forces debug-level logging when set to "1".
	EnvDebug = "CALVIN_DEBUG"
)

// buildEnvMap reads CALVIN_* environment variables and returns a flat map
// suitable for a koanf confmap provider. Only non-empty env vars that
// parse successfully are included; unparseable values are silently
// skipped so a single bad env var does not block the whole run. Invalid
// enumerated values (security mode, targets) are validated downstream by
// Validate, which emits the required did-you-mean warning.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvSecurityMode); v != "" {
		m["security.mode"] = v
	}
	if v := os.Getenv(EnvTargets); v != "" {
		parts := strings.Split(v, ",")
		targets := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				targets = append(targets, p)
			}
		}
		m["targets.enabled"] = targets
		m["targets.enabled_set"] = true
	}
	if v := os.Getenv(EnvVerbosity); v != "" {
		m["output.verbosity"] = v
	}
	if v := os.Getenv(EnvAtomicWrites); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["sync.atomic_writes"] = b
		}
	}

	return m
}
