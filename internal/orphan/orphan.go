// Package orphan implements the orphan detector & deleter (spec
// section 4.12): lockfile entries in the current run's namespace that
// no longer correspond to a produced output key, classified by
// matching the Calvin footer marker against the destination's current
// content, then deleted per policy.
//
// Grounded on the teacher's internal/discovery/gitignore.go-style
// classify-then-act split: detection (pure, side-effect free) is kept
// separate from deletion (has side effects and per-file error
// handling), the same way the teacher separates matching from
// filtering.
package orphan

import (
	"sort"
	"strings"

	"github.com/64andrewwalker/calvin/internal/adapter"
	"github.com/64andrewwalker/calvin/internal/destination"
	"github.com/64andrewwalker/calvin/internal/lockfile"
	"github.com/64andrewwalker/calvin/internal/model"
)

// Signature classifies an orphaned lockfile entry by what the
// destination currently holds at its path.
type Signature string

const (
	// SignatureSafe means the destination file still carries Calvin's
	// footer marker: it was never hand-edited, safe to delete.
	SignatureSafe Signature = "safe"
	// SignatureGone means the destination file no longer exists.
	SignatureGone Signature = "gone"
	// SignatureUnsafe means the destination file exists but no longer
	// carries the footer marker: a user has taken ownership of it.
	SignatureUnsafe Signature = "unsafe"
)

// Candidate is one orphaned lockfile entry awaiting a policy decision.
type Candidate struct {
	Key       string
	Path      string
	Signature Signature
}

// Detect finds every lockfile entry under namespace that is absent
// from producedKeys, classifying each by destination content (spec
// section 4.12).
func Detect(doc *lockfile.Document, namespace model.LockfileNamespace, producedKeys map[string]bool, dest destination.Destination) ([]Candidate, error) {
	prefix := string(namespace) + ":"
	var candidates []Candidate

	for _, key := range doc.KeysWithPrefix(prefix) {
		if producedKeys[key] {
			continue
		}

		path := strings.TrimPrefix(key, prefix)
		sig, err := classify(dest, path)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, Candidate{Key: key, Path: path, Signature: sig})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })
	return candidates, nil
}

func classify(dest destination.Destination, path string) (Signature, error) {
	exists, err := dest.Exists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return SignatureGone, nil
	}

	reader, ok := dest.(destination.ContentReader)
	if !ok {
		// No raw-content capability: treat as unsafe (conservative —
		// never assume a marker match we can't verify).
		return SignatureUnsafe, nil
	}

	content, err := reader.Read(path)
	if err != nil {
		return "", err
	}

	marker := adapter.FooterMarker("")
	markerPrefix := marker[:strings.Index(marker, "Source:")]
	if strings.Contains(string(content), markerPrefix) {
		return SignatureSafe, nil
	}
	return SignatureUnsafe, nil
}

// Policy selects which orphan signatures get deleted (spec section
// 4.12).
type Policy string

const (
	// PolicyReportOnly deletes nothing; callers are expected to
	// recommend re-running with --cleanup.
	PolicyReportOnly Policy = "report_only"
	// PolicyCleanup deletes safe and gone orphans, leaving unsafe ones
	// alone.
	PolicyCleanup Policy = "cleanup"
	// PolicyCleanupForce deletes every orphan regardless of signature.
	PolicyCleanupForce Policy = "cleanup_force"
)

// Result is the outcome of one Delete call.
type Result struct {
	Removed []string
	Skipped []string
	Errors  []FileError
}

// FileError is one candidate's non-fatal deletion failure.
type FileError struct {
	Path    string
	Message string
}

// shouldDelete reports whether policy deletes a candidate of the
// given signature.
func shouldDelete(policy Policy, sig Signature) bool {
	switch policy {
	case PolicyCleanupForce:
		return true
	case PolicyCleanup:
		return sig == SignatureSafe || sig == SignatureGone
	default:
		return false
	}
}

// Delete applies policy to candidates: each deleted entry's key is
// removed from doc, and per-file delete errors are recorded without
// aborting the run (spec section 4.12).
func Delete(candidates []Candidate, policy Policy, dest destination.Destination, doc *lockfile.Document) *Result {
	result := &Result{}

	for _, c := range candidates {
		if !shouldDelete(policy, c.Signature) {
			result.Skipped = append(result.Skipped, c.Path)
			continue
		}

		if c.Signature != SignatureGone {
			if err := dest.Delete(c.Path); err != nil {
				result.Errors = append(result.Errors, FileError{Path: c.Path, Message: err.Error()})
				continue
			}
		}

		doc.Delete(c.Key)
		result.Removed = append(result.Removed, c.Path)
	}

	return result
}
