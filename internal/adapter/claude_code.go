package adapter

import (
	"fmt"

	"github.com/64andrewwalker/calvin/internal/model"
)

// ClaudeCode compiles action and agent assets into
// .claude/commands/<id>.md. Policy assets don't produce a per-asset
// output here — their deny contributions feed the single
// settings.json the compiler writes once per run (spec section 4.5,
// 4.13), not this adapter's Compile path.
type ClaudeCode struct{}

// NewClaudeCode returns the claude-code adapter.
func NewClaudeCode() *ClaudeCode { return &ClaudeCode{} }

func (c *ClaudeCode) Target() model.Target { return model.TargetClaudeCode }

func (c *ClaudeCode) SupportsSkills() bool { return true }

func (c *ClaudeCode) Compile(asset model.Asset, scope model.Scope, supplemental SupplementalSource) ([]model.OutputFile, []model.ValidationError, error) {
	diagnostics := checkAllowedTools(asset)

	switch asset.Kind {
	case model.KindSkill:
		outputs, err := compileSkillTree(asset, scope, supplemental, claudeCodeSkillRoot(scope), model.TargetClaudeCode)
		return outputs, diagnostics, err
	case model.KindPolicy:
		// Handled by the compiler's settings.json aggregation.
		return nil, diagnostics, nil
	default:
		content, err := RenderCommandMarkdown(asset)
		if err != nil {
			return nil, diagnostics, err
		}
		path := claudeCodeCommandPath(scope, asset.ID)
		return []model.OutputFile{model.NewOutputFile(path, content, model.TargetClaudeCode, asset.SourcePath)}, diagnostics, nil
	}
}

// RenderCommandMarkdown renders the claude-code command-file format:
// frontmatter with description/allowed-tools/argument-hint, the body
// verbatim (including $ARGUMENTS and $1..$9 placeholders), and the
// footer marker. Exported so the cursor adapter can mirror it
// byte-for-byte under the cross-adapter rule (spec section 4.6).
func RenderCommandMarkdown(asset model.Asset) ([]byte, error) {
	names := make([]string, 0, len(asset.Arguments))
	for _, a := range asset.Arguments {
		names = append(names, a.Name)
	}
	fields := commandFrontmatterFields(asset.Description, asset.AllowedTools, argumentHintFrom(names))
	return renderFrontmatterMarkdown(fields, asset.Body, FooterMarker(asset.SourcePath))
}

func claudeCodeCommandPath(scope model.Scope, id string) string {
	if scope == model.ScopeUser {
		return fmt.Sprintf("~/.claude/commands/%s.md", id)
	}
	return fmt.Sprintf(".claude/commands/%s.md", id)
}

func claudeCodeSkillRoot(scope model.Scope) string {
	if scope == model.ScopeUser {
		return "~/.claude/skills"
	}
	return ".claude/skills"
}

var _ Adapter = (*ClaudeCode)(nil)
