// Package ignore implements the .calvinignore matcher used while walking a
// PromptPack layer (spec section 4.2, 4.3). Unlike the teacher's
// hierarchical GitignoreMatcher, Calvin only recognizes a single flat
// .calvinignore file at each layer's root: a layer is a small, curated
// directory tree, not an arbitrary repository checkout, so per-directory
// ignore files would add complexity no PromptPack needs.
package ignore

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher is the interface implemented by every ignore-pattern source
// consulted while walking a layer. Paths are relative to the layer root
// and use forward slashes.
type Matcher interface {
	IsIgnored(path string, isDir bool) bool
}

// LayerIgnore loads and evaluates the .calvinignore file at the root of a
// single PromptPack layer, if one exists.
type LayerIgnore struct {
	matcher *gitignore.GitIgnore
	logger  *slog.Logger
}

// NewLayerIgnore reads <layerRoot>/.calvinignore. A missing file is not an
// error: the returned LayerIgnore matches nothing.
func NewLayerIgnore(layerRoot string) (*LayerIgnore, error) {
	logger := slog.Default().With("component", "ignore")
	path := filepath.Join(layerRoot, ".calvinignore")

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &LayerIgnore{logger: logger}, nil
		}
		return nil, err
	}

	compiled, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded .calvinignore", "path", path)
	return &LayerIgnore{matcher: compiled, logger: logger}, nil
}

// IsIgnored reports whether path, relative to the layer root, matches a
// .calvinignore pattern. Returns false when no .calvinignore was present.
func (m *LayerIgnore) IsIgnored(path string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}

	normalized := filepath.ToSlash(path)
	normalized = strings.TrimPrefix(normalized, "./")
	if normalized == "" || normalized == "." {
		return false
	}
	if isDir && !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	return m.matcher.MatchesPath(normalized)
}

var _ Matcher = (*LayerIgnore)(nil)

// CompositeMatcher chains multiple Matchers and reports a path ignored if
// any one of them matches it.
type CompositeMatcher struct {
	matchers []Matcher
}

// NewCompositeMatcher builds a CompositeMatcher from the given matchers,
// silently dropping any nils.
func NewCompositeMatcher(matchers ...Matcher) *CompositeMatcher {
	filtered := make([]Matcher, 0, len(matchers))
	for _, m := range matchers {
		if m != nil {
			filtered = append(filtered, m)
		}
	}
	return &CompositeMatcher{matchers: filtered}
}

// IsIgnored reports whether path is ignored by any chained matcher.
func (c *CompositeMatcher) IsIgnored(path string, isDir bool) bool {
	for _, m := range c.matchers {
		if m.IsIgnored(path, isDir) {
			return true
		}
	}
	return false
}

var _ Matcher = (*CompositeMatcher)(nil)
