package adapter

import (
	"fmt"
	"strings"

	"github.com/64andrewwalker/calvin/internal/model"
)

// compileSkillTree renders a skill asset's SKILL.md plus every
// supplemental file under skillRoot/<id>/ (spec section 4.5: "Skill
// assets produce a directory tree: a target-specific SKILL.md plus the
// supplementals copied to the adapter's skill directory"). skillRoot
// must already be scope-resolved (project- or user-rooted, "~/"
// included where applicable).
func compileSkillTree(asset model.Asset, scope model.Scope, supplemental SupplementalSource, skillRoot string, target model.Target) ([]model.OutputFile, error) {
	manifest, err := RenderCommandMarkdown(asset)
	if err != nil {
		return nil, fmt.Errorf("rendering skill manifest: %w", err)
	}

	dir := strings.TrimSuffix(skillRoot, "/") + "/" + asset.ID
	outputs := []model.OutputFile{
		model.NewOutputFile(dir+"/SKILL.md", manifest, target, asset.SourcePath),
	}

	if supplemental == nil {
		return outputs, nil
	}

	for _, rel := range asset.Supplementals {
		content, err := supplemental(rel)
		if err != nil {
			return nil, fmt.Errorf("reading supplemental %q: %w", rel, err)
		}
		outputs = append(outputs, model.NewOutputFile(dir+"/"+rel, content, target, asset.SourcePath))
	}

	return outputs, nil
}
