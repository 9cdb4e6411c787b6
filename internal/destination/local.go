package destination

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/model"
)

// windowsRenameBackoff is the retry schedule for atomic-write renames
// that hit a sharing-violation error on Windows (spec section 4.9).
var windowsRenameBackoff = []time.Duration{
	100 * time.Millisecond,
	500 * time.Millisecond,
	1000 * time.Millisecond,
}

// rootedLocal is the shared implementation behind LocalProject and
// LocalHome: every path is resolved relative to root, with a leading
// "~/" stripped before joining (ExpandHome already happened, or the
// caller passed a root-relative path directly).
type rootedLocal struct {
	root string
}

func resolvePath(root, path string) string {
	rel := strings.TrimPrefix(path, "~/")
	return filepath.Join(root, rel)
}

func (r *rootedLocal) Exists(path string) (bool, error) {
	_, err := os.Stat(resolvePath(r.root, path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, calvinerr.Wrap(calvinerr.KindIO, err, "stat failed")
}

func (r *rootedLocal) Hash(path string) (model.ContentHash, error) {
	content, err := os.ReadFile(resolvePath(r.root, path))
	if err != nil {
		return "", calvinerr.Wrap(calvinerr.KindIO, err, "reading file to hash").WithLocation(path, 0)
	}
	return model.HashBytes(content), nil
}

func (r *rootedLocal) Write(path string, content []byte) error {
	full := resolvePath(r.root, path)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return calvinerr.Wrap(calvinerr.KindIO, err, "creating destination directory").WithLocation(path, 0)
	}

	tmp, err := os.CreateTemp(dir, ".calvin-write-*.tmp")
	if err != nil {
		return calvinerr.Wrap(calvinerr.KindIO, err, "creating temp file").WithLocation(path, 0)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return calvinerr.Wrap(calvinerr.KindIO, err, "writing temp file").WithLocation(path, 0)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return calvinerr.Wrap(calvinerr.KindIO, err, "closing temp file").WithLocation(path, 0)
	}

	return renameWithRetry(tmpPath, full, path)
}

// renameWithRetry performs the temp-to-destination rename. On Windows,
// an in-progress reader/antivirus scan can cause a transient
// sharing-violation error; retry up to three times with the spec's
// 100/500/1000ms backoff before giving up.
func renameWithRetry(tmpPath, destPath, reportPath string) error {
	err := os.Rename(tmpPath, destPath)
	if err == nil {
		return nil
	}
	if runtime.GOOS != "windows" {
		os.Remove(tmpPath)
		return calvinerr.Wrap(calvinerr.KindIO, err, "renaming into place").WithLocation(reportPath, 0)
	}

	for _, delay := range windowsRenameBackoff {
		time.Sleep(delay)
		if err = os.Rename(tmpPath, destPath); err == nil {
			return nil
		}
	}

	os.Remove(tmpPath)
	return calvinerr.Wrap(calvinerr.KindIO, err, "renaming into place after retries").WithLocation(reportPath, 0)
}

func (r *rootedLocal) Delete(path string) error {
	full := resolvePath(r.root, path)
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return calvinerr.Wrap(calvinerr.KindIO, err, "deleting file").WithLocation(path, 0)
	}
	return nil
}

// Read returns path's raw bytes, used by the conflict resolver's diff
// view (ContentReader).
func (r *rootedLocal) Read(path string) ([]byte, error) {
	content, err := os.ReadFile(resolvePath(r.root, path))
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindIO, err, "reading file").WithLocation(path, 0)
	}
	return content, nil
}

func (r *rootedLocal) BatchStatus(paths []string) (map[string]Status, error) {
	out := make(map[string]Status, len(paths))
	for _, p := range paths {
		exists, err := r.Exists(p)
		if err != nil {
			return nil, err
		}
		status := Status{Exists: exists}
		if exists {
			h, err := r.Hash(p)
			if err != nil {
				return nil, err
			}
			status.Hash = h
		}
		out[p] = status
	}
	return out, nil
}

func (r *rootedLocal) ListUnder(prefix string) ([]string, error) {
	root := resolvePath(r.root, prefix)
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(r.root, path)
		if relErr != nil {
			return relErr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindIO, err, "listing destination entries")
	}
	return out, nil
}

// LocalProject is rooted at a project directory.
type LocalProject struct {
	rootedLocal
}

// NewLocalProject returns a LocalProject rooted at dir.
func NewLocalProject(dir string) *LocalProject {
	return &LocalProject{rootedLocal{root: dir}}
}

// ExpandHome is a no-op for project-scope paths; "~/" doesn't occur in
// project-relative output paths.
func (p *LocalProject) ExpandHome(path string) string { return path }

// LocalHome is rooted at the invoking user's home directory and
// expands "~/"-prefixed paths against it.
type LocalHome struct {
	rootedLocal
}

// NewLocalHome returns a LocalHome rooted at homeDir.
func NewLocalHome(homeDir string) *LocalHome {
	return &LocalHome{rootedLocal{root: homeDir}}
}

// ExpandHome resolves a "~/"-prefixed path against the home root,
// returning an absolute path. Paths without the prefix are returned
// unchanged.
func (h *LocalHome) ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	return filepath.Join(h.root, strings.TrimPrefix(path, "~/"))
}

var (
	_ Destination   = (*LocalProject)(nil)
	_ Destination   = (*LocalHome)(nil)
	_ ContentReader = (*LocalProject)(nil)
	_ ContentReader = (*LocalHome)(nil)
)
