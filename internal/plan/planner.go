// Package plan implements the planner and conflict resolver (spec
// sections 4.7, 4.8): classifying every compiled OutputFile against
// the destination and the current lockfile as a write, a skip, or one
// of two conflict kinds, then — given a resolution policy — rewriting
// that classification into a pure (writes, skips) split ready for the
// executor.
package plan

import (
	"strings"

	"github.com/64andrewwalker/calvin/internal/destination"
	"github.com/64andrewwalker/calvin/internal/lockfile"
	"github.com/64andrewwalker/calvin/internal/model"
)

// Classification names the five-way outcome of comparing one
// OutputFile against the destination and lockfile (spec section 4.7).
type Classification string

const (
	ClassWriteNew        Classification = "write_new"
	ClassWriteUpdate     Classification = "write_update"
	ClassSkipUnchanged   Classification = "skip_unchanged"
	ClassConflictUntrack Classification = "conflict_untracked"
	ClassConflictModify  Classification = "conflict_modified"
)

// IsConflict reports whether c is one of the two conflict
// classifications.
func (c Classification) IsConflict() bool {
	return c == ClassConflictUntrack || c == ClassConflictModify
}

// Item is one OutputFile's classification, plus the bookkeeping the
// executor and lockfile writer need to act on it.
type Item struct {
	Output         model.OutputFile
	LockfileKey    string
	Classification Classification
}

// Plan is the full set of classified items for one run.
type Plan struct {
	Items []Item
}

// Writes returns every item classified as a write (new or update).
func (p *Plan) Writes() []Item {
	return p.filter(func(c Classification) bool { return c == ClassWriteNew || c == ClassWriteUpdate })
}

// Skips returns every item classified as skip(unchanged).
func (p *Plan) Skips() []Item {
	return p.filter(func(c Classification) bool { return c == ClassSkipUnchanged })
}

// Conflicts returns every item classified as one of the conflict
// kinds.
func (p *Plan) Conflicts() []Item {
	return p.filter(func(c Classification) bool { return c.IsConflict() })
}

func (p *Plan) filter(keep func(Classification) bool) []Item {
	var out []Item
	for _, item := range p.Items {
		if keep(item.Classification) {
			out = append(out, item)
		}
	}
	return out
}

func namespaceFor(path string) model.LockfileNamespace {
	if strings.HasPrefix(path, "~/") {
		return model.NamespaceHome
	}
	return model.NamespaceProject
}

// Build classifies every output against dest and doc, implementing
// spec section 4.7's six-step algorithm. It issues a single
// destination.BatchStatus call across all output paths rather than
// probing each file individually (the planner's first-class
// performance requirement).
func Build(outputs []model.OutputFile, dest destination.Destination, doc *lockfile.Document, force bool) (*Plan, error) {
	paths := make([]string, len(outputs))
	for i, o := range outputs {
		paths[i] = o.Path
	}

	statuses, err := dest.BatchStatus(paths)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(outputs))
	for _, output := range outputs {
		key := lockfile.Key(namespaceFor(output.Path), output.Path)
		status := statuses[output.Path]
		entry, tracked := doc.Get(key)

		var class Classification
		switch {
		case !status.Exists:
			class = ClassWriteNew
		case !tracked:
			class = ClassConflictUntrack
		case status.Hash.Equal(entry.Hash) && entry.Hash.Equal(output.ContentHash):
			class = ClassSkipUnchanged
		case status.Hash.Equal(entry.Hash):
			class = ClassWriteUpdate
		default:
			class = ClassConflictModify
		}

		if force && class.IsConflict() {
			if class == ClassConflictUntrack {
				class = ClassWriteNew
			} else {
				class = ClassWriteUpdate
			}
		}

		items = append(items, Item{Output: output, LockfileKey: key, Classification: class})
	}

	return &Plan{Items: items}, nil
}
