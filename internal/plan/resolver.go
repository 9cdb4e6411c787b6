package plan

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/destination"
)

// ResolutionMode selects how conflicts are handled (spec section 4.8).
type ResolutionMode string

const (
	ModeForce       ResolutionMode = "force"
	ModeYes         ResolutionMode = "yes"
	ModeInteractive ResolutionMode = "interactive"
)

// Decision is the user's (or non-interactive policy's) answer for one
// conflict item.
type Decision string

const (
	DecisionOverwrite    Decision = "overwrite"
	DecisionSkip         Decision = "skip"
	DecisionDiff         Decision = "diff"
	DecisionAbort        Decision = "abort"
	DecisionOverwriteAll Decision = "overwrite-all"
	DecisionSkipAll      Decision = "skip-all"
)

// PromptFunc asks the user how to resolve one conflict, given a
// rendered unified diff for reference. Implementations that can't
// prompt (no TTY) should return DecisionSkip.
type PromptFunc func(item Item, diff string) (Decision, error)

// Resolved is the conflict resolver's output: the plan's writes and
// skips as a pure split, ready for the executor (spec section 4.8).
type Resolved struct {
	Writes []Item
	Skips  []Item
}

// Resolve applies mode to p's conflicts, producing a pure
// (writes, skips) split. dest supplies destination content for
// rendering diffs in interactive mode.
func Resolve(p *Plan, mode ResolutionMode, dest destination.Destination, prompt PromptFunc) (*Resolved, error) {
	writes := p.Writes()
	skips := p.Skips()
	conflicts := p.Conflicts()

	switch mode {
	case ModeForce:
		writes = append(writes, conflicts...)
		return &Resolved{Writes: writes, Skips: skips}, nil

	case ModeYes:
		skips = append(skips, conflicts...)
		return &Resolved{Writes: writes, Skips: skips}, nil

	case ModeInteractive:
		return resolveInteractive(writes, skips, conflicts, dest, prompt)

	default:
		skips = append(skips, conflicts...)
		return &Resolved{Writes: writes, Skips: skips}, nil
	}
}

func resolveInteractive(writes, skips, conflicts []Item, dest destination.Destination, prompt PromptFunc) (*Resolved, error) {
	if prompt == nil {
		skips = append(skips, conflicts...)
		return &Resolved{Writes: writes, Skips: skips}, nil
	}

	var overwriteAll, skipAll bool

	for _, item := range conflicts {
		if overwriteAll {
			writes = append(writes, item)
			continue
		}
		if skipAll {
			skips = append(skips, item)
			continue
		}

		for {
			diffText := ""
			decision, err := prompt(item, diffText)
			if err != nil {
				return nil, err
			}

			switch decision {
			case DecisionOverwrite:
				writes = append(writes, item)
			case DecisionSkip:
				skips = append(skips, item)
			case DecisionOverwriteAll:
				overwriteAll = true
				writes = append(writes, item)
			case DecisionSkipAll:
				skipAll = true
				skips = append(skips, item)
			case DecisionDiff:
				rendered, err := RenderDiff(dest, item)
				if err != nil {
					return nil, err
				}
				decision, err = prompt(item, rendered)
				if err != nil {
					return nil, err
				}
				switch decision {
				case DecisionOverwrite:
					writes = append(writes, item)
				case DecisionOverwriteAll:
					overwriteAll = true
					writes = append(writes, item)
				case DecisionSkipAll:
					skipAll = true
					skips = append(skips, item)
				case DecisionAbort:
					return nil, calvinerr.New(calvinerr.KindConflict, "sync aborted by user at a conflict")
				default:
					skips = append(skips, item)
				}
			case DecisionAbort:
				return nil, calvinerr.New(calvinerr.KindConflict, "sync aborted by user at a conflict")
			default:
				skips = append(skips, item)
			}
			break
		}
	}

	return &Resolved{Writes: writes, Skips: skips}, nil
}

// RenderDiff renders a unified-style diff between the destination's
// current content for item and the proposed output, using
// sergi/go-diff's line-level diffing (spec section 4.8).
func RenderDiff(dest destination.Destination, item Item) (string, error) {
	existing, err := readExisting(dest, item.Output.Path)
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(existing, string(item.Output.Content))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- %s (destination)\n+++ %s (proposed)\n", item.Output.Path, item.Output.Path)
	for _, d := range diffs {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			prefix = " "
		}
		for _, line := range lines {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

// readExisting returns path's current destination content, if any.
// Diff rendering is best-effort: destinations that don't implement
// ContentReader (none currently; reserved for future minimal
// destinations) diff against an empty baseline rather than failing
// the whole resolve.
func readExisting(dest destination.Destination, path string) (string, error) {
	reader, ok := dest.(destination.ContentReader)
	if !ok {
		return "", nil
	}

	exists, err := dest.Exists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}

	content, err := reader.Read(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
