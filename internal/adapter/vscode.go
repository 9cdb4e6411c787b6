package adapter

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/64andrewwalker/calvin/internal/model"
)

// VSCode compiles every asset kind into
// .github/instructions/<id>.instructions.md, and aggregates every
// compiled instruction into a single AGENTS.md index via PostCompile
// (spec section 4.5, 4.6). Skills are unsupported: a skill asset is
// skipped with a warning rather than failing the whole run, unless
// vscode was the asset's only selected target.
type VSCode struct{}

// NewVSCode returns the vscode adapter.
func NewVSCode() *VSCode { return &VSCode{} }

func (v *VSCode) Target() model.Target { return model.TargetVSCode }

func (v *VSCode) SupportsSkills() bool { return false }

func (v *VSCode) Compile(asset model.Asset, scope model.Scope, supplemental SupplementalSource) ([]model.OutputFile, []model.ValidationError, error) {
	diagnostics := checkAllowedTools(asset)

	if asset.Kind == model.KindSkill {
		diagnostics = append(diagnostics, model.ValidationError{
			Severity: "warning",
			Field:    asset.SourcePath,
			Message:  "vscode does not support skill assets; skipped",
		})
		return nil, diagnostics, nil
	}

	if scope == model.ScopeUser {
		diagnostics = append(diagnostics, model.ValidationError{
			Severity: "warning",
			Field:    asset.SourcePath,
			Message:  "vscode does not support user-scope output; skipped",
		})
		return nil, diagnostics, nil
	}

	fields := map[string]any{"description": asset.Description}
	if len(asset.Apply) > 0 {
		fields["applyTo"] = asset.Apply
	}
	content, err := renderFrontmatterMarkdown(fields, asset.Body, FooterMarker(asset.SourcePath))
	if err != nil {
		return nil, diagnostics, err
	}

	path := fmt.Sprintf(".github/instructions/%s.instructions.md", asset.ID)
	return []model.OutputFile{model.NewOutputFile(path, content, model.TargetVSCode, asset.SourcePath)}, diagnostics, nil
}

// PostCompile aggregates every compiled instruction file into a single
// AGENTS.md index listing each compiled file's source path linked to its
// output path, sorted by output path for deterministic output.
func (v *VSCode) PostCompile(outputs []model.OutputFile) ([]model.OutputFile, error) {
	sorted := make([]model.OutputFile, len(outputs))
	copy(sorted, outputs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var buf bytes.Buffer
	buf.WriteString("# Agents Index\n\n")
	for _, o := range sorted {
		if o.Path == "AGENTS.md" {
			continue
		}
		fmt.Fprintf(&buf, "- [%s](%s)\n", o.SourcePath, o.Path)
	}
	buf.WriteString("\n")
	buf.WriteString(FooterMarker("AGENTS.md"))
	buf.WriteString("\n")

	aggregate := model.NewOutputFile("AGENTS.md", buf.Bytes(), model.TargetVSCode, "AGENTS.md")
	return append(outputs, aggregate), nil
}

var _ Adapter = (*VSCode)(nil)
var _ PostCompiler = (*VSCode)(nil)
