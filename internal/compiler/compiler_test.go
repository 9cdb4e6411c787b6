package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64andrewwalker/calvin/internal/model"
)

func action(id string) model.Asset {
	return model.Asset{
		Kind:        model.KindAction,
		ID:          id,
		Description: "do a thing",
		Scope:       model.ScopeProject,
		Body:        "body",
		SourcePath:  "actions/" + id + ".md",
	}
}

func TestCompile_RoutesToRequestedTargets(t *testing.T) {
	t.Parallel()

	result, err := Compile([]model.Asset{action("review")}, []model.Target{model.TargetClaudeCode, model.TargetCodex}, nil)
	require.NoError(t, err)

	var paths []string
	for _, o := range result.Outputs {
		paths = append(paths, o.Path)
	}
	assert.Contains(t, paths, ".claude/commands/review.md")
	assert.Contains(t, paths, ".codex/prompts/review.md")
}

func TestCompile_CursorMirrorsWhenClaudeCodeAbsent(t *testing.T) {
	t.Parallel()

	result, err := Compile([]model.Asset{action("review")}, []model.Target{model.TargetCursor}, nil)
	require.NoError(t, err)

	var found bool
	for _, o := range result.Outputs {
		if o.Path == ".cursor/commands/review.md" {
			found = true
		}
	}
	assert.True(t, found, "expected mirrored cursor command output")
}

func TestCompile_NoMirrorWhenBothSelected(t *testing.T) {
	t.Parallel()

	result, err := Compile([]model.Asset{action("review")}, []model.Target{model.TargetCursor, model.TargetClaudeCode}, nil)
	require.NoError(t, err)

	for _, o := range result.Outputs {
		assert.NotEqual(t, ".cursor/commands/review.md", o.Path)
	}
}

func TestCompile_SkillFailsWhenAllTargetsUnsupported(t *testing.T) {
	t.Parallel()

	skill := action("docgen")
	skill.Kind = model.KindSkill

	_, err := Compile([]model.Asset{skill}, []model.Target{model.TargetVSCode, model.TargetAntigravity}, nil)
	require.Error(t, err)
}

func TestCompile_SkillSucceedsWithOneSupportedTarget(t *testing.T) {
	t.Parallel()

	skill := action("docgen")
	skill.Kind = model.KindSkill

	result, err := Compile([]model.Asset{skill}, []model.Target{model.TargetVSCode, model.TargetClaudeCode}, nil)
	require.NoError(t, err)

	var sawWarning, sawManifest bool
	for _, d := range result.Diagnostics {
		if d.Severity == "warning" {
			sawWarning = true
		}
	}
	for _, o := range result.Outputs {
		if o.Path == ".claude/skills/docgen/SKILL.md" {
			sawManifest = true
		}
	}
	assert.True(t, sawWarning)
	assert.True(t, sawManifest)
}

func TestCompile_ClaudeCodeWritesSettingsJSONOnce(t *testing.T) {
	t.Parallel()

	policy := model.Asset{
		Kind:        model.KindPolicy,
		ID:          "no-secrets",
		Description: "deny secrets",
		Scope:       model.ScopeProject,
		Apply:       []string{"**/*.custom-secret"},
		SourcePath:  "policies/no-secrets.md",
	}

	result, err := Compile([]model.Asset{action("review"), policy}, []model.Target{model.TargetClaudeCode}, nil)
	require.NoError(t, err)

	var settingsCount int
	var content []byte
	for _, o := range result.Outputs {
		if o.Path == ".claude/settings.json" {
			settingsCount++
			content = o.Content
		}
	}
	assert.Equal(t, 1, settingsCount)
	assert.Contains(t, string(content), "**/*.custom-secret")
	assert.Contains(t, string(content), ".env")
}

func TestCompile_NoSettingsJSONWhenClaudeCodeNotSelected(t *testing.T) {
	t.Parallel()

	result, err := Compile([]model.Asset{action("review")}, []model.Target{model.TargetCodex}, nil)
	require.NoError(t, err)

	for _, o := range result.Outputs {
		assert.NotEqual(t, ".claude/settings.json", o.Path)
	}
}

func TestCompile_VSCodePostCompileAddsAgentsIndex(t *testing.T) {
	t.Parallel()

	result, err := Compile([]model.Asset{action("review")}, []model.Target{model.TargetVSCode}, nil)
	require.NoError(t, err)

	var found bool
	for _, o := range result.Outputs {
		if o.Path == "AGENTS.md" {
			found = true
		}
	}
	assert.True(t, found)
}
