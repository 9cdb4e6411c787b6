// Package parser extracts YAML frontmatter from PromptPack source files
// and turns it into a model.Asset (spec section 4.1). The flow mirrors
// the teacher's decode-then-validate config loading shape: decode once
// into a raw map to catch unknown keys, decode again into a typed
// struct for the real fields, then run semantic validation.
//
// Frontmatter parsing:
//  1. split the file into a frontmatter block (between `---` fences)
//     and a body,
//  2. decode the frontmatter YAML into a raw map to detect unrecognized
//     keys,
//  3. decode into the typed frontmatter struct,
//  4. validate required fields and enumerated values,
//  5. build the Asset, inferring kind/scope defaults from the source
//     path when the frontmatter omits them.
package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/textdist"
)

const fence = "---"

var knownFrontmatterKeys = []string{
	"description", "kind", "scope", "targets", "apply",
	"allowed-tools", "arguments", "alwaysApply",
}

// frontmatter is the typed decode target for the recognized frontmatter
// keys (spec section 6).
type frontmatter struct {
	Description  string             `yaml:"description"`
	Kind         string             `yaml:"kind"`
	Scope        string             `yaml:"scope"`
	Targets      []string           `yaml:"targets"`
	Apply        []string           `yaml:"apply"`
	AllowedTools []string           `yaml:"allowed-tools"`
	Arguments    []frontmatterArg   `yaml:"arguments"`
	AlwaysApply  bool               `yaml:"alwaysApply"`
}

type frontmatterArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

// Result is the outcome of parsing one source file: the constructed
// Asset plus any non-fatal diagnostics (unknown-key warnings).
type Result struct {
	Asset       model.Asset
	Diagnostics []model.ValidationError
}

// Parse extracts frontmatter and body from raw, a single source file's
// bytes, and builds an Asset. sourcePath is the file's path relative to
// its layer root, used both for kind inference and as the Asset's
// SourcePath. Parsing is strict: any error aborts the load of the
// containing layer (spec section 4.1), so callers should treat a
// non-nil error as fatal for the whole layer, not just this file.
func Parse(sourcePath string, raw []byte) (*Result, error) {
	fmText, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindParse, err, "malformed frontmatter fences").
			WithLocation(sourcePath, 0)
	}

	var rawMap map[string]any
	if err := yaml.Unmarshal([]byte(fmText), &rawMap); err != nil {
		line, hint := extractYAMLError(err.Error())
		msg := "invalid YAML in frontmatter"
		e := calvinerr.Wrap(calvinerr.KindParse, err, msg).WithLocation(sourcePath, line)
		if hint != "" {
			e = e.WithFix(hint)
		}
		return nil, e
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		line, hint := extractYAMLError(err.Error())
		e := calvinerr.Wrap(calvinerr.KindParse, err, "invalid YAML in frontmatter").
			WithLocation(sourcePath, line)
		if hint != "" {
			e = e.WithFix(hint)
		}
		return nil, e
	}

	if strings.TrimSpace(fm.Description) == "" {
		return nil, calvinerr.New(calvinerr.KindParse, "description is required and must be non-empty").
			WithLocation(sourcePath, 0)
	}

	var diagnostics []model.ValidationError
	diagnostics = append(diagnostics, unknownKeyWarnings(sourcePath, rawMap)...)

	kind := model.KindFromPathSegment(firstPathSegment(sourcePath))
	if fm.Kind != "" {
		candidate := model.AssetKind(fm.Kind)
		if !candidate.Valid() {
			return nil, calvinerr.Newf(calvinerr.KindParse, "kind %q is not recognized", fm.Kind).
				WithLocation(sourcePath, 0)
		}
		kind = candidate
	}

	scope := model.ScopeProject
	if fm.Scope != "" {
		candidate := model.Scope(fm.Scope)
		if !candidate.Valid() {
			return nil, calvinerr.Newf(calvinerr.KindParse, "scope %q is not recognized", fm.Scope).
				WithLocation(sourcePath, 0)
		}
		scope = candidate
	}

	var targets []model.Target
	for _, t := range fm.Targets {
		target := model.Target(t)
		if !target.Valid() {
			return nil, calvinerr.Newf(calvinerr.KindParse, "targets entry %q is not recognized", t).
				WithLocation(sourcePath, 0)
		}
		targets = append(targets, target)
	}

	args := make([]model.Argument, 0, len(fm.Arguments))
	for _, a := range fm.Arguments {
		args = append(args, model.Argument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
			Default:     a.Default,
		})
	}

	asset := model.Asset{
		Kind:           kind,
		ID:             deriveID(sourcePath),
		Description:    fm.Description,
		Scope:          scope,
		EnabledTargets: targets,
		Apply:          fm.Apply,
		AllowedTools:   fm.AllowedTools,
		Arguments:      args,
		Body:           body,
		SourcePath:     sourcePath,
	}

	return &Result{Asset: asset, Diagnostics: diagnostics}, nil
}

// splitFrontmatter separates the leading `---`-delimited YAML block from
// the rest of the file. Returns an error if the file does not open with
// a fence line or the closing fence is never found.
func splitFrontmatter(raw []byte) (fm string, body string, err error) {
	text := string(raw)
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != fence {
		return "", "", fmt.Errorf("file must begin with a %q frontmatter fence", fence)
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == fence {
			fmLines := lines[1:i]
			bodyLines := lines[i+1:]
			return strings.Join(fmLines, "\n"), strings.Join(bodyLines, "\n"), nil
		}
	}

	return "", "", fmt.Errorf("closing %q fence not found", fence)
}

// firstPathSegment returns the first "/"-separated component of path,
// used to infer an asset's kind from its containing directory.
func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "./")
	if idx := strings.Index(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return ""
}

// deriveID computes the asset's id: the lowercased, hyphenated relative
// path from the PromptPack root with extension stripped (spec section
// 3). For skill assets the caller overrides this with the directory
// name before merge.
func deriveID(sourcePath string) string {
	id := sourcePath
	if idx := strings.LastIndex(id, "."); idx >= 0 {
		id = id[:idx]
	}
	// Drop the leading kind-segment directory so the id doesn't repeat
	// the kind, e.g. "actions/review" -> "review".
	if idx := strings.Index(id, "/"); idx >= 0 {
		id = id[idx+1:]
	}
	id = strings.ToLower(id)
	id = strings.ReplaceAll(id, "/", "-")
	id = strings.ReplaceAll(id, "_", "-")
	return id
}

// unknownKeyWarnings returns a warning ValidationError, with a
// Levenshtein-based suggestion, for every top-level frontmatter key not
// in knownFrontmatterKeys.
func unknownKeyWarnings(sourcePath string, raw map[string]any) []model.ValidationError {
	var out []model.ValidationError
	for key := range raw {
		if containsKey(knownFrontmatterKeys, key) {
			continue
		}
		out = append(out, model.ValidationError{
			Severity: "warning",
			Field:    fmt.Sprintf("%s:%s", sourcePath, key),
			Message:  fmt.Sprintf("unknown frontmatter key %q", key),
			Suggest:  textdist.SuggestMessage(key, knownFrontmatterKeys),
		})
	}
	return out
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
