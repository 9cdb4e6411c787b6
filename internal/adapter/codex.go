package adapter

import (
	"fmt"

	"github.com/64andrewwalker/calvin/internal/model"
)

// Codex compiles every non-skill asset into .codex/prompts/<id>.md and
// supports skills like claude-code and cursor (spec section 4.5).
type Codex struct{}

// NewCodex returns the codex adapter.
func NewCodex() *Codex { return &Codex{} }

func (c *Codex) Target() model.Target { return model.TargetCodex }

func (c *Codex) SupportsSkills() bool { return true }

func (c *Codex) Compile(asset model.Asset, scope model.Scope, supplemental SupplementalSource) ([]model.OutputFile, []model.ValidationError, error) {
	diagnostics := checkAllowedTools(asset)

	if asset.Kind == model.KindSkill {
		outputs, err := compileSkillTree(asset, scope, supplemental, codexSkillRoot(scope), model.TargetCodex)
		return outputs, diagnostics, err
	}

	content, err := RenderCommandMarkdown(asset)
	if err != nil {
		return nil, diagnostics, err
	}
	path := codexPromptPath(scope, asset.ID)
	return []model.OutputFile{model.NewOutputFile(path, content, model.TargetCodex, asset.SourcePath)}, diagnostics, nil
}

func codexPromptPath(scope model.Scope, id string) string {
	if scope == model.ScopeUser {
		return fmt.Sprintf("~/.codex/prompts/%s.md", id)
	}
	return fmt.Sprintf(".codex/prompts/%s.md", id)
}

func codexSkillRoot(scope model.Scope) string {
	if scope == model.ScopeUser {
		return "~/.codex/skills"
	}
	return ".codex/skills"
}

var _ Adapter = (*Codex)(nil)
