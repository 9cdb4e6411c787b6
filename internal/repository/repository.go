// Package repository walks a single PromptPack layer's directory tree
// and produces the Assets it contains (spec section 4.3). A layer walk
// has two passes: a recursive pass over ordinary Markdown sources
// (skipping dotfiles and the skills/ subtree, which has its own
// shape), and a second pass enumerating skills/<id>/ directories, each
// of which must contain a SKILL.md and may bundle supplemental files.
//
// Grounded on the teacher's internal/discovery/walker.go for the
// ignore-filter shape, generalized from "read every matching file's
// bytes" to "parse every matching file into an Asset". The first pass
// walks directories manually, rather than with filepath.WalkDir,
// so that a symlinked subdirectory can be followed with its own
// layer-relative path — adapted from the teacher's
// internal/discovery/symlink.go loop-detecting resolver.
package repository

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/ignore"
	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/parser"
)

const skillManifestName = "SKILL.md"

// LoadResult is the outcome of walking one layer: the Assets it
// contributed and a count of entries skipped by an ignore matcher
// (used for layer-level diagnostics, spec section 3's Layer entity).
type LoadResult struct {
	Assets       []model.Asset
	Diagnostics  []model.ValidationError
	IgnoredCount int
}

// Load walks layerRoot and returns every Asset it defines. matcher may
// be nil, meaning nothing is ignored beyond the fixed dotfile/.git
// rules. A malformed source file aborts the whole load, per spec
// section 4.1's strict-parsing requirement — there is no partial,
// best-effort layer result.
func Load(layerRoot string, matcher ignore.Matcher) (*LoadResult, error) {
	result := &LoadResult{}
	seen := make(map[model.AssetID]string) // identity -> source path, for duplicate detection

	if err := loadMarkdownAssets(layerRoot, matcher, result, seen); err != nil {
		return nil, err
	}
	if err := loadSkillAssets(layerRoot, matcher, result, seen); err != nil {
		return nil, err
	}

	sort.Slice(result.Assets, func(i, j int) bool {
		return result.Assets[i].SourcePath < result.Assets[j].SourcePath
	})

	return result, nil
}

func loadMarkdownAssets(layerRoot string, matcher ignore.Matcher, result *LoadResult, seen map[model.AssetID]string) error {
	if _, err := os.Stat(layerRoot); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return calvinerr.Wrap(calvinerr.KindIO, err, "reading layer root")
	}
	return walkMarkdownDir(layerRoot, "", matcher, newSymlinkGuard(), result, seen)
}

// walkMarkdownDir walks physicalDir, whose logical layer-relative path
// is relDir ("" at the layer root). relDir is tracked independently of
// the filesystem path so that a symlinked directory's children get
// paths relative to the symlink, not its real location.
//
// Entries that are themselves symlinks are resolved and, for a loop or
// a dangling target, skipped rather than erroring the whole layer —
// one bad symlink shouldn't sink every other asset.
func walkMarkdownDir(physicalDir, relDir string, matcher ignore.Matcher, guard *symlinkGuard, result *LoadResult, seen map[model.AssetID]string) error {
	entries, err := os.ReadDir(physicalDir)
	if err != nil {
		return calvinerr.Wrap(calvinerr.KindIO, err, "reading layer directory").WithLocation(relDir, 0)
	}

	for _, entry := range entries {
		name := entry.Name()
		relPath := name
		if relDir != "" {
			relPath = relDir + "/" + name
		}

		if strings.HasPrefix(name, ".") {
			continue
		}
		if relDir == "" && name == "skills" {
			// Skills have their own directory-based shape; handled by
			// loadSkillAssets.
			continue
		}

		physicalPath := filepath.Join(physicalDir, name)
		isDir := entry.IsDir()

		if entry.Type()&fs.ModeSymlink != 0 {
			real, loop, resolveErr := guard.resolve(physicalPath)
			if resolveErr != nil {
				result.Diagnostics = append(result.Diagnostics, model.ValidationError{
					Severity: "warning",
					Field:    relPath,
					Message:  fmt.Sprintf("skipping dangling symlink: %v", resolveErr),
				})
				continue
			}
			if loop {
				continue
			}
			info, statErr := os.Stat(real)
			if statErr != nil {
				continue
			}
			isDir = info.IsDir()
			physicalPath = real
		}

		if isDir && name == ".git" {
			continue
		}

		if matcher != nil && matcher.IsIgnored(relPath, isDir) {
			result.IgnoredCount++
			continue
		}

		if isDir {
			if err := walkMarkdownDir(physicalPath, relPath, matcher, guard, result, seen); err != nil {
				return err
			}
			continue
		}
		if !strings.HasSuffix(name, ".md") {
			continue
		}

		content, err := os.ReadFile(physicalPath)
		if err != nil {
			return calvinerr.Wrap(calvinerr.KindIO, err, "reading source file").WithLocation(relPath, 0)
		}

		parsed, err := parser.Parse(relPath, content)
		if err != nil {
			return err
		}

		if err := recordAsset(result, seen, parsed.Asset, parsed.Diagnostics); err != nil {
			return err
		}
	}
	return nil
}

func loadSkillAssets(layerRoot string, matcher ignore.Matcher, result *LoadResult, seen map[model.AssetID]string) error {
	skillsRoot := filepath.Join(layerRoot, "skills")
	entries, err := os.ReadDir(skillsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return calvinerr.Wrap(calvinerr.KindIO, err, "reading skills directory")
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillID := entry.Name()
		skillRelDir := "skills/" + skillID

		if matcher != nil && matcher.IsIgnored(skillRelDir, true) {
			result.IgnoredCount++
			continue
		}

		manifestPath := filepath.Join(skillsRoot, skillID, skillManifestName)
		content, err := os.ReadFile(manifestPath)
		if err != nil {
			if os.IsNotExist(err) {
				return calvinerr.Newf(calvinerr.KindParse, "skill %q is missing %s", skillID, skillManifestName).
					WithLocation(skillRelDir, 0).
					WithFix(fmt.Sprintf("add %s/%s", skillRelDir, skillManifestName))
			}
			return calvinerr.Wrap(calvinerr.KindIO, err, "reading skill manifest").WithLocation(skillRelDir, 0)
		}

		manifestRelPath := skillRelDir + "/" + skillManifestName
		parsed, err := parser.Parse(manifestRelPath, content)
		if err != nil {
			return err
		}

		asset := parsed.Asset
		asset.Kind = model.KindSkill
		asset.ID = strings.ToLower(skillID)
		asset.SourcePath = skillRelDir

		supplementals, err := collectSupplementals(skillsRoot, skillID, result)
		if err != nil {
			return err
		}
		asset.Supplementals = supplementals

		if err := recordAsset(result, seen, asset, parsed.Diagnostics); err != nil {
			return err
		}
	}
	return nil
}

// collectSupplementals walks a skill's directory for every file except
// SKILL.md, validating each as a SafePath relative to the skill
// directory (spec section 3: supplementals must lie within the skill
// directory). A file whose name looks like a secret or credential is
// excluded and reported as a diagnostic rather than bundled into the
// deployed skill.
func collectSupplementals(skillsRoot, skillID string, result *LoadResult) ([]string, error) {
	skillDir := filepath.Join(skillsRoot, skillID)
	var supplementals []string

	err := filepath.WalkDir(skillDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(skillDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == skillManifestName {
			return nil
		}

		location := "skills/" + skillID + "/" + relPath
		if isSensitiveSupplemental(relPath) {
			result.Diagnostics = append(result.Diagnostics, model.ValidationError{
				Severity: "warning",
				Field:    location,
				Message:  "supplemental file looks like a secret or credential; excluded from the bundled skill",
				Suggest:  "rename it or move it out of the skill directory if it isn't actually sensitive",
			})
			return nil
		}

		safe, err := model.NewSafePath(relPath)
		if err != nil {
			return calvinerr.Wrap(calvinerr.KindSecurity, err, "supplemental path escapes its skill directory").
				WithLocation(location, 0)
		}
		supplementals = append(supplementals, safe.String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(supplementals)
	return supplementals, nil
}

func recordAsset(result *LoadResult, seen map[model.AssetID]string, asset model.Asset, diagnostics []model.ValidationError) error {
	identity := asset.Identity()
	if existing, ok := seen[identity]; ok {
		return calvinerr.Newf(calvinerr.KindValidation, "duplicate asset %s (also defined at %s)", identity.String(), existing).
			WithLocation(asset.SourcePath, 0)
	}
	seen[identity] = asset.SourcePath
	result.Assets = append(result.Assets, asset)
	result.Diagnostics = append(result.Diagnostics, diagnostics...)
	return nil
}
