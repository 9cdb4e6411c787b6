package adapter

import (
	"fmt"

	"github.com/64andrewwalker/calvin/internal/model"
)

// Antigravity compiles policy assets into .agent/rules/<id>.md and
// action/agent assets into .agent/workflows/<id>.md. Skills are
// unsupported, mirroring vscode's skip-with-warning behavior (spec
// section 4.5).
type Antigravity struct{}

// NewAntigravity returns the antigravity adapter.
func NewAntigravity() *Antigravity { return &Antigravity{} }

func (a *Antigravity) Target() model.Target { return model.TargetAntigravity }

func (a *Antigravity) SupportsSkills() bool { return false }

func (a *Antigravity) Compile(asset model.Asset, scope model.Scope, supplemental SupplementalSource) ([]model.OutputFile, []model.ValidationError, error) {
	diagnostics := checkAllowedTools(asset)

	if asset.Kind == model.KindSkill {
		diagnostics = append(diagnostics, model.ValidationError{
			Severity: "warning",
			Field:    asset.SourcePath,
			Message:  "antigravity does not support skill assets; skipped",
		})
		return nil, diagnostics, nil
	}

	fields := map[string]any{"description": asset.Description}
	if len(asset.Apply) > 0 {
		fields["globs"] = asset.Apply
	}
	content, err := renderFrontmatterMarkdown(fields, asset.Body, FooterMarker(asset.SourcePath))
	if err != nil {
		return nil, diagnostics, err
	}

	path := antigravityPath(asset, scope)
	return []model.OutputFile{model.NewOutputFile(path, content, model.TargetAntigravity, asset.SourcePath)}, diagnostics, nil
}

func antigravityPath(asset model.Asset, scope model.Scope) string {
	isRule := asset.Kind == model.KindPolicy

	if scope == model.ScopeUser {
		if isRule {
			return fmt.Sprintf("~/.gemini/antigravity/global_rules/%s.md", asset.ID)
		}
		return fmt.Sprintf("~/.gemini/antigravity/global_workflows/%s.md", asset.ID)
	}

	if isRule {
		return fmt.Sprintf(".agent/rules/%s.md", asset.ID)
	}
	return fmt.Sprintf(".agent/workflows/%s.md", asset.ID)
}

var _ Adapter = (*Antigravity)(nil)
