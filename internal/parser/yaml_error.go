package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// yamlLinePattern matches yaml.v3's "yaml: line N: message" and
// "yaml: line N: column M: message" error strings.
var yamlLinePattern = regexp.MustCompile(`yaml: line (\d+): (?:column (\d+): )?(.*)`)

// extractYAMLError pulls a frontmatter-relative line number and an
// actionable hint out of a yaml.v3 error string. This adapts the
// string-parsing strategy from the gh-aw frontmatter parser: yaml.v3
// doesn't expose the token/position structs that a reflection-based
// extractor would need, but its error strings follow the same
// "yaml: line N: message" shape, so a regex is enough.
//
// When yaml.v3's message reports "mapping values are not allowed in
// this context" or "could not find expected", it is almost always
// choking on an unquoted value containing ":" -- the hint spells that
// out directly rather than making the caller decode the YAML spec.
func extractYAMLError(errStr string) (line int, hint string) {
	m := yamlLinePattern.FindStringSubmatch(errStr)
	if m == nil {
		return 0, ""
	}

	line, _ = strconv.Atoi(m[1])
	message := m[3]

	if strings.Contains(message, "mapping values are not allowed in this context") ||
		strings.Contains(message, "could not find expected") {
		hint = "values containing \":\" must be quoted"
	}

	return line, hint
}
