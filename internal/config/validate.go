package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/textdist"
)

var validSecurityModes = []string{"yolo", "balanced", "strict"}

var validVerbosities = []string{"quiet", "normal", "verbose", "debug"}

var validTargetNames = func() []string {
	names := make([]string, 0, len(model.AllTargets()))
	for _, t := range model.AllTargets() {
		names = append(names, string(t))
	}
	return names
}()

// Validate inspects a resolved RunConfig and returns ValidationErrors for
// any invalid enumerated value or malformed glob pattern. Invalid
// enumerated values are warnings, not fatal errors, per spec section 6 ("MUST
// produce a visible warning ... and fall back to the default"), while
// malformed glob patterns are reported with severity "error".
// Validate does not mutate cfg, the caller is responsible for
// substituting the default when a warning is returned for a field.
func Validate(cfg *RunConfig) []model.ValidationError {
	if cfg == nil {
		return nil
	}

	var results []model.ValidationError

	if !contains(validSecurityModes, cfg.Security.Mode) {
		results = append(results, invalidEnum("security.mode", cfg.Security.Mode, validSecurityModes))
	}

	if cfg.Output.Verbosity != "" && !contains(validVerbosities, cfg.Output.Verbosity) {
		results = append(results, invalidEnum("output.verbosity", cfg.Output.Verbosity, validVerbosities))
	}

	for i, t := range cfg.Targets.Enabled {
		if !contains(validTargetNames, t) {
			results = append(results, invalidEnum(fmt.Sprintf("targets.enabled[%d]", i), t, validTargetNames))
		}
	}

	results = append(results, validateGlobs("security.deny", cfg.Security.Deny)...)
	results = append(results, validateGlobs("security.deny_exclude", cfg.Security.DenyExclude)...)

	return results
}

func invalidEnum(field, value string, valid []string) model.ValidationError {
	suggest := textdist.SuggestMessage(value, valid)
	if suggest == "" {
		suggest = fmt.Sprintf("valid values: %v", valid)
	}
	return model.ValidationError{
		Severity: "warning",
		Field:    field,
		Message:  fmt.Sprintf("%q is not a recognized value", value),
		Suggest:  suggest,
	}
}

func validateGlobs(field string, patterns []string) []model.ValidationError {
	var results []model.ValidationError
	for i, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			results = append(results, model.ValidationError{
				Severity: "error",
				Field:    fmt.Sprintf("%s[%d]", field, i),
				Message:  fmt.Sprintf("invalid glob pattern %q", p),
				Suggest:  `use doublestar glob syntax, e.g. "**/*.md"`,
			})
		}
	}
	return results
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
