package repository

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// sensitiveSupplementalPatterns flags skill supplemental files that
// look like secrets or credentials rather than deliberately bundled
// reference material. A skill directory is walked file-by-file with
// no allowlist, so anything an author drops next to SKILL.md would
// otherwise ship verbatim to every deployed target.
//
// Adapted from the teacher's internal/discovery/defaults.go
// SensitivePatterns, narrowed to the subset relevant to a skill's
// bundled files (supplementals are never build artifacts or VCS
// directories, so those patterns from the teacher's broader
// repository-scanning list don't apply here).
var sensitiveSupplementalPatterns = []string{
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"*.p12",
	"*.pfx",
	"*secret*",
	"*credential*",
	"*password*",
}

var sensitiveSupplementalMatcher = gitignore.CompileIgnoreLines(sensitiveSupplementalPatterns...)

// isSensitiveSupplemental reports whether relPath (relative to its
// skill directory) matches a secret-looking naming pattern.
func isSensitiveSupplemental(relPath string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	return sensitiveSupplementalMatcher.MatchesPath(normalized)
}
