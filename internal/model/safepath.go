package model

import (
	"fmt"
	"path"
	"strings"
)

// SafePath is a relative, slash-separated path that has been validated to
// contain no ".." traversal segments and no absolute prefix. OutputFile
// paths and skill supplemental paths are SafePath values before any write
// is attempted.
type SafePath string

// NewSafePath validates p and returns it as a SafePath. p is normalized to
// forward slashes. An error is returned if p is absolute or escapes its
// root via "..".
func NewSafePath(p string) (SafePath, error) {
	normalized := strings.ReplaceAll(p, "\\", "/")
	if normalized == "" {
		return "", fmt.Errorf("path is empty")
	}
	if path.IsAbs(normalized) {
		return "", fmt.Errorf("path %q must be relative, not absolute", p)
	}
	cleaned := path.Clean(normalized)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %q escapes its root via '..'", p)
	}
	if cleaned == "." {
		return "", fmt.Errorf("path %q resolves to the root itself", p)
	}
	return SafePath(cleaned), nil
}

// String returns the path as a plain string.
func (p SafePath) String() string {
	return string(p)
}

// Join appends a child segment to p and re-validates the result, rejecting
// any traversal introduced by the child (used to confirm skill
// supplementals resolve inside their skill directory).
func (p SafePath) Join(child string) (SafePath, error) {
	return NewSafePath(path.Join(string(p), child))
}
