package repository

import (
	"log/slog"
	"os"
	"path/filepath"
)

// symlinkGuard resolves symlinks encountered while walking a layer and
// breaks cycles by tracking which real paths have already been
// visited. A PromptPack layer may bundle a shared policies/ or
// skills/ directory via symlink; without loop detection a self- or
// mutually-referential symlink pair would recurse forever.
//
// Adapted from the teacher's internal/discovery/symlink.go
// SymlinkResolver, narrowed to single-threaded use since a layer walk
// is sequential (unlike the teacher's concurrent multi-root walker).
type symlinkGuard struct {
	visited map[string]bool
	logger  *slog.Logger
}

func newSymlinkGuard() *symlinkGuard {
	return &symlinkGuard{
		visited: make(map[string]bool),
		logger:  slog.Default().With("component", "repository", "subcomponent", "symlink-guard"),
	}
}

// resolve follows path through symlinks to its real filesystem path.
// loop is true if that real path was already visited, in which case
// the caller should skip it without treating it as an error. err is
// non-nil for a dangling symlink or other stat failure.
func (g *symlinkGuard) resolve(path string) (realPath string, loop bool, err error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false, err
	}
	if g.visited[resolved] {
		g.logger.Debug("symlink loop detected", "path", path, "real_path", resolved)
		return resolved, true, nil
	}
	g.visited[resolved] = true
	return resolved, false, nil
}

func isSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}
