package deploy

import (
	"os"
	"path/filepath"

	"github.com/64andrewwalker/calvin/internal/model"
)

// readSupplemental reads a skill asset's supplemental file from disk,
// validating relPath stays within the skill's source directory before
// touching the filesystem (spec section 4.9's path-safety invariant,
// applied here to reads as well as writes).
func readSupplemental(layerRoot, skillSourcePath, relPath string) ([]byte, error) {
	safe, err := model.NewSafePath(relPath)
	if err != nil {
		return nil, err
	}

	full := filepath.Join(layerRoot, skillSourcePath, safe.String())
	return os.ReadFile(full)
}
