// Package compiler implements the compiler service (spec section 4.6):
// given merged assets and a run's effective target set, it invokes the
// matching adapter for each asset/target pair, accumulates
// OutputFiles, runs each adapter's post_compile hook, and owns the
// single cross-adapter rule the spec calls out as a common source of
// bugs in reimplementations — the cursor/claude-code command mirror.
package compiler

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/64andrewwalker/calvin/internal/adapter"
	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/security"
)

// SupplementalSource resolves a skill asset's supplemental file
// content given the asset and the supplemental's relative path.
type SupplementalSource func(asset model.Asset, relPath string) ([]byte, error)

// Result is the compiler's output: every compiled file plus
// accumulated diagnostics.
type Result struct {
	Outputs     []model.OutputFile
	Diagnostics []model.ValidationError
}

// SecurityOptions carries the run's resolved security configuration
// into the claude-code settings.json aggregation (spec section
// 4.13). The zero value means "balanced mode, no extra project
// config" — the safe default for callers that don't care.
type SecurityOptions struct {
	Mode              model.SecurityMode
	AllowNaked        bool
	ProjectConfigured []string
	Excludes          []string
}

// Compile runs every asset through its effective target set's
// adapters, applies the cursor/claude-code mirror rule, and runs
// post_compile hooks, using balanced-mode security defaults for the
// claude-code settings.json aggregation. Callers that need to honor a
// project's configured security mode should use CompileWithSecurity.
func Compile(assets []model.Asset, runTargets []model.Target, supplemental SupplementalSource) (*Result, error) {
	return CompileWithSecurity(assets, runTargets, supplemental, SecurityOptions{Mode: model.SecurityBalanced})
}

// CompileWithSecurity is Compile with an explicit SecurityOptions,
// used by the deploy use case to thread the project's resolved
// security.mode/allow_naked/deny/deny.exclude configuration into the
// claude-code settings.json aggregation (spec section 4.13).
func CompileWithSecurity(assets []model.Asset, runTargets []model.Target, supplemental SupplementalSource, secOpts SecurityOptions) (*Result, error) {
	adapters := make(map[model.Target]adapter.Adapter, len(adapter.All()))
	for _, a := range adapter.All() {
		adapters[a.Target()] = a
	}

	byTarget := make(map[model.Target][]model.OutputFile)
	var diagnostics []model.ValidationError

	for _, asset := range assets {
		effective := asset.TargetsForRun(runTargets)

		skillUnsupported := 0
		for _, target := range effective {
			a, ok := adapters[target]
			if !ok {
				continue
			}
			if asset.Kind == model.KindSkill && !a.SupportsSkills() {
				skillUnsupported++
				diagnostics = append(diagnostics, model.ValidationError{
					Severity: "warning",
					Field:    asset.SourcePath,
					Message:  fmt.Sprintf("%s does not support skill assets; skipped", target),
				})
				continue
			}

			outputs, assetDiagnostics, err := a.Compile(asset, asset.Scope, supplementalFor(supplemental, asset))
			if err != nil {
				return nil, fmt.Errorf("compiling asset %s for %s: %w", asset.Identity().String(), target, err)
			}
			diagnostics = append(diagnostics, assetDiagnostics...)
			byTarget[target] = append(byTarget[target], outputs...)
		}

		if asset.Kind == model.KindSkill && skillUnsupported == len(effective) && len(effective) > 0 {
			return nil, fmt.Errorf("skill %s has no supported target among %v", asset.Identity().String(), effective)
		}
	}

	applyCursorMirror(assets, runTargets, byTarget)
	settingsDiagnostics, err := applyClaudeCodeSettings(assets, runTargets, byTarget, secOpts)
	if err != nil {
		return nil, err
	}
	diagnostics = append(diagnostics, settingsDiagnostics...)

	var all []model.OutputFile
	for target, outputs := range byTarget {
		if pc, ok := adapters[target].(adapter.PostCompiler); ok {
			withHooks, err := pc.PostCompile(outputs)
			if err != nil {
				return nil, fmt.Errorf("post_compile for %s: %w", target, err)
			}
			outputs = withHooks
		}
		all = append(all, outputs...)
	}

	return &Result{Outputs: all, Diagnostics: diagnostics}, nil
}

// applyCursorMirror implements spec section 4.6's cross-adapter rule:
// when cursor is in the run but claude-code is not, cursor additionally
// receives a mirrored copy of every action/agent asset's command
// output. This is the one and only place that rule is evaluated.
func applyCursorMirror(assets []model.Asset, runTargets []model.Target, byTarget map[model.Target][]model.OutputFile) {
	if !hasTarget(runTargets, model.TargetCursor) || hasTarget(runTargets, model.TargetClaudeCode) {
		return
	}

	for _, asset := range assets {
		if asset.Kind != model.KindAction && asset.Kind != model.KindAgent {
			continue
		}
		effective := asset.TargetsForRun(runTargets)
		if !hasTarget(effective, model.TargetCursor) {
			continue
		}

		content, err := adapter.RenderMirroredCommand(asset)
		if err != nil {
			continue
		}
		path := adapter.CursorCommandMirrorPath(asset.Scope, asset.ID)
		byTarget[model.TargetCursor] = append(byTarget[model.TargetCursor],
			model.NewOutputFile(path, content, model.TargetCursor, asset.SourcePath))
	}
}

// claudeCodeSettings is the structured shape written to
// .claude/settings.json, serialized with encoding/json rather than
// string concatenation (spec section 4.5's serializer requirement).
type claudeCodeSettings struct {
	Permissions claudeCodePermissions `json:"permissions"`
}

type claudeCodePermissions struct {
	Deny []string `json:"deny"`
}

// applyClaudeCodeSettings writes .claude/settings.json exactly once
// per run when claude-code is a requested target (spec section
// 4.5/4.13): the mandatory deny baseline, every policy asset's
// contributed deny globs (an asset's `apply` field, repurposed here
// as the deny patterns it wants enforced), and the project's
// configured deny list, minus configured excludes.
func applyClaudeCodeSettings(assets []model.Asset, runTargets []model.Target, byTarget map[model.Target][]model.OutputFile, secOpts SecurityOptions) ([]model.ValidationError, error) {
	if !hasTarget(runTargets, model.TargetClaudeCode) {
		return nil, nil
	}

	var assetContributed []string
	for _, asset := range assets {
		if asset.Kind != model.KindPolicy {
			continue
		}
		if !hasTarget(asset.TargetsForRun(runTargets), model.TargetClaudeCode) {
			continue
		}
		assetContributed = append(assetContributed, asset.Apply...)
	}

	deny, diagnostics := security.MergeClaudeCodeDeny(secOpts.Mode, secOpts.AllowNaked, assetContributed, secOpts.ProjectConfigured, secOpts.Excludes)
	sort.Strings(deny)

	content, err := json.MarshalIndent(claudeCodeSettings{Permissions: claudeCodePermissions{Deny: deny}}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding claude-code settings.json: %w", err)
	}
	content = append(content, '\n')

	byTarget[model.TargetClaudeCode] = append(byTarget[model.TargetClaudeCode],
		model.NewOutputFile(".claude/settings.json", content, model.TargetClaudeCode, ""))
	return diagnostics, nil
}

func hasTarget(targets []model.Target, want model.Target) bool {
	for _, t := range targets {
		if t == want {
			return true
		}
	}
	return false
}

func supplementalFor(source SupplementalSource, asset model.Asset) adapter.SupplementalSource {
	if source == nil {
		return nil
	}
	return func(relPath string) ([]byte, error) {
		return source(asset, relPath)
	}
}
