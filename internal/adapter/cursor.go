package adapter

import (
	"fmt"

	"github.com/64andrewwalker/calvin/internal/model"
)

// Cursor compiles policy and agent assets into
// .cursor/rules/<id>/RULE.md. Action assets produce no native output
// from this adapter alone — the .cursor/commands/<id>.md mirror of claude-code's
// command output (when claude-code isn't also in the run) is owned by
// the compiler's cross-adapter rule (spec section 4.6), not this
// Compile method, so the rule lives in exactly one place.
type Cursor struct{}

// NewCursor returns the cursor adapter.
func NewCursor() *Cursor { return &Cursor{} }

func (c *Cursor) Target() model.Target { return model.TargetCursor }

func (c *Cursor) SupportsSkills() bool { return true }

func (c *Cursor) Compile(asset model.Asset, scope model.Scope, supplemental SupplementalSource) ([]model.OutputFile, []model.ValidationError, error) {
	diagnostics := checkAllowedTools(asset)

	switch asset.Kind {
	case model.KindSkill:
		outputs, err := compileSkillTree(asset, scope, supplemental, cursorSkillRoot(scope), model.TargetCursor)
		return outputs, diagnostics, err
	case model.KindPolicy, model.KindAgent:
		content, err := renderRuleMarkdown(asset)
		if err != nil {
			return nil, diagnostics, err
		}
		path := cursorRulePath(scope, asset.ID)
		return []model.OutputFile{model.NewOutputFile(path, content, model.TargetCursor, asset.SourcePath)}, diagnostics, nil
	default:
		return nil, diagnostics, nil
	}
}

// RenderMirroredCommand renders an action/agent asset in cursor's
// mirrored commands/ format. Identical to claude-code's command
// rendering — cursor reads Claude's command files when both targets
// are selected, so the mirrored copy must be byte-compatible.
func RenderMirroredCommand(asset model.Asset) ([]byte, error) {
	return RenderCommandMarkdown(asset)
}

// CursorCommandMirrorPath returns the path the compiler writes the
// mirrored command file to, for a given scope and asset id.
func CursorCommandMirrorPath(scope model.Scope, id string) string {
	if scope == model.ScopeUser {
		return fmt.Sprintf("~/.cursor/commands/%s.md", id)
	}
	return fmt.Sprintf(".cursor/commands/%s.md", id)
}

func renderRuleMarkdown(asset model.Asset) ([]byte, error) {
	fields := map[string]any{"description": asset.Description}
	if len(asset.Apply) > 0 {
		fields["globs"] = asset.Apply
	}
	return renderFrontmatterMarkdown(fields, asset.Body, FooterMarker(asset.SourcePath))
}

func cursorRulePath(scope model.Scope, id string) string {
	if scope == model.ScopeUser {
		return fmt.Sprintf("~/.cursor/rules/%s/RULE.md", id)
	}
	return fmt.Sprintf(".cursor/rules/%s/RULE.md", id)
}

func cursorSkillRoot(scope model.Scope) string {
	if scope == model.ScopeUser {
		return "~/.cursor/skills"
	}
	return ".cursor/skills"
}

var _ Adapter = (*Cursor)(nil)
