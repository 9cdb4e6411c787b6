// Package security implements Calvin's single security policy
// consultation point (spec section 4.13): the mandatory/balanced/strict
// deny-pattern lists, the dangerous-tools check applied to skill
// allowed-tools, and the Claude-Code settings.json deny-list merge
// formula. Every adapter that needs a deny list or a dangerous-tools
// warning calls into this package rather than re-implementing the
// rules, per the spec's explicit "consulted from one place" invariant.
package security

import (
	"sort"
	"strings"

	"github.com/64andrewwalker/calvin/internal/model"
)

// mandatoryDenyPatterns applies under every SecurityMode unless
// allow_naked disables them.
var mandatoryDenyPatterns = []string{
	".env", ".env.*", "**/secrets/**", "*.pem", "*.key",
	"id_rsa", "id_ed25519", ".git/",
}

var balancedAddPatterns = []string{"**/credentials*"}

var strictAddPatterns = []string{
	"**/*.key", "**/*.pem", "**/id_rsa*", "**/credentials*",
}

// dangerousTools names tools a skill's allowed-tools list should not
// normally include; a match produces a warning, not a hard failure.
var dangerousTools = []string{"Bash", "Exec", "Shell", "Eval", "RunCommand", "Execute"}

var dangerousToolPrefixes = []string{"bash", "exec", "shell"}

// Policy is the resolved set of deny patterns for one run, computed
// from a SecurityMode and whether allow_naked was set.
type Policy struct {
	Mode       model.SecurityMode
	AllowNaked bool
	Deny       []string // sorted, deduplicated
}

// Resolve computes the deny-pattern list for mode, honoring
// allow_naked (spec section 4.13: "allow_naked = true removes the
// minimum set and MUST warn").
func Resolve(mode model.SecurityMode, allowNaked bool) (Policy, []model.ValidationError) {
	var diagnostics []model.ValidationError
	var patterns []string

	if !allowNaked {
		patterns = append(patterns, mandatoryDenyPatterns...)
	} else {
		diagnostics = append(diagnostics, model.ValidationError{
			Severity: "warning",
			Field:    "security.allow_naked",
			Message:  "allow_naked is true: the mandatory deny-pattern baseline is not applied",
		})
	}

	switch mode {
	case model.SecurityBalanced:
		patterns = append(patterns, balancedAddPatterns...)
	case model.SecurityStrict:
		patterns = append(patterns, strictAddPatterns...)
	}

	return Policy{Mode: mode, AllowNaked: allowNaked, Deny: dedupeSorted(patterns)}, diagnostics
}

// MergeClaudeCodeDeny computes the settings.json deny list: mandatory
// set (via Resolve) plus asset-contributed entries plus
// project-configured entries, minus explicit excludes (spec section
// 4.13).
func MergeClaudeCodeDeny(mode model.SecurityMode, allowNaked bool, assetContributed, projectConfigured, excludes []string) ([]string, []model.ValidationError) {
	policy, diagnostics := Resolve(mode, allowNaked)

	excludeSet := make(map[string]bool, len(excludes))
	for _, e := range excludes {
		excludeSet[e] = true
	}

	combined := append([]string{}, policy.Deny...)
	combined = append(combined, assetContributed...)
	combined = append(combined, projectConfigured...)

	var out []string
	seen := make(map[string]bool)
	for _, p := range combined {
		if excludeSet[p] || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out, diagnostics
}

// CheckAllowedTools reports a warning ValidationError for every entry
// in allowedTools that names a dangerous tool. fieldPrefix identifies
// the asset in the diagnostic (e.g. its SourcePath).
func CheckAllowedTools(fieldPrefix string, allowedTools []string) []model.ValidationError {
	var out []model.ValidationError
	for _, tool := range allowedTools {
		if isDangerousTool(tool) {
			out = append(out, model.ValidationError{
				Severity: "warning",
				Field:    fieldPrefix + ":allowed-tools",
				Message:  "allowed-tools includes a dangerous tool: " + tool,
			})
		}
	}
	return out
}

func isDangerousTool(tool string) bool {
	for _, d := range dangerousTools {
		if strings.EqualFold(tool, d) {
			return true
		}
	}
	lower := strings.ToLower(tool)
	for _, prefix := range dangerousToolPrefixes {
		if lower == prefix || strings.HasPrefix(lower, prefix+"-") {
			return true
		}
	}
	return false
}

func dedupeSorted(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
