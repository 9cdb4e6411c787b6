// Package adapter implements the five per-platform compilers that turn
// a model.Asset into zero or more model.OutputFiles (spec section 4.5):
// claude-code, cursor, vscode, antigravity, codex. Each adapter is a
// pure function of (Asset, Scope) plus an optional SupplementalSource
// for skill assets' bundled files — there is no shared mutable state,
// matching the teacher's preference for small, pure, independently
// testable units (e.g. internal/discovery/filter.go's PatternFilter).
package adapter

import (
	"fmt"

	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/security"
)

// FooterMarker is the fixed HTML comment every generated text output
// carries, identifying it as Calvin-generated and naming its source
// asset. The orphan detector matches this exact shape to classify a
// destination file as safe to delete (spec section 4.12, section 6).
func FooterMarker(sourcePath string) string {
	return fmt.Sprintf("<!-- Generated by Calvin. Source: %s. DO NOT EDIT. -->", sourcePath)
}

// SupplementalSource reads a skill asset's supplemental file content by
// its path relative to the skill's source directory. Compiling a skill
// asset calls this once per entry in Asset.Supplementals.
type SupplementalSource func(relPath string) ([]byte, error)

// Adapter compiles one Asset into the OutputFiles appropriate for one
// target platform.
type Adapter interface {
	// Target identifies which platform this adapter serves.
	Target() model.Target

	// SupportsSkills reports whether this target can represent skill
	// assets at all (spec section 4.5: VS Code and Antigravity cannot).
	SupportsSkills() bool

	// Compile produces the OutputFiles for one asset at the given
	// scope, plus any non-fatal diagnostics (e.g. a dangerous-tool
	// warning). supplemental is nil for non-skill assets.
	Compile(asset model.Asset, scope model.Scope, supplemental SupplementalSource) ([]model.OutputFile, []model.ValidationError, error)
}

// PostCompiler is implemented by adapters with a post_compile hook
// that runs once over every OutputFile accumulated for their target
// (spec section 4.6) — currently only the VS Code adapter's AGENTS.md
// aggregate.
type PostCompiler interface {
	PostCompile(outputs []model.OutputFile) ([]model.OutputFile, error)
}

// checkAllowedTools wraps security.CheckAllowedTools with the asset's
// source path, used identically by every adapter so the dangerous-tool
// warning is never duplicated per target (spec section 4.13).
func checkAllowedTools(asset model.Asset) []model.ValidationError {
	return security.CheckAllowedTools(asset.SourcePath, asset.AllowedTools)
}

// All returns one instance of every target adapter, in the stable
// order model.AllTargets() defines.
func All() []Adapter {
	return []Adapter{
		NewClaudeCode(),
		NewCursor(),
		NewVSCode(),
		NewAntigravity(),
		NewCodex(),
	}
}
