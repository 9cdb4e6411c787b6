// Package lockfile implements the TOML lockfile repository (spec
// section 4.11): a single document at
// <project>/.promptpack/.calvin.lock mapping "<namespace>:<path>" keys
// to content hashes. Loading preserves and round-trips any top-level
// fields this version of Calvin doesn't recognize, and a missing file
// is treated as empty rather than an error.
//
// Grounded on the teacher's internal/config/loader.go
// (BurntSushi/toml decode-then-warn-on-undecoded-keys shape), adapted
// here to round-trip unknown fields instead of merely warning about
// them, since a lockfile must survive being read and rewritten by a
// future Calvin version that adds fields this one doesn't know about.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/model"
)

const currentVersion = 1

// Entry is one lockfile record: the content hash Calvin last wrote (or
// observed) for a given key.
type Entry struct {
	Hash model.ContentHash
}

// Document is the in-memory, mutable form of the lockfile. Zero value
// is a valid empty lockfile at currentVersion.
type Document struct {
	Version int
	files   map[string]Entry
	extra   map[string]any // unrecognized top-level fields, preserved verbatim
}

// Key derives a lockfile key from a namespace and a path. The path is
// used as-is: no canonicalization, no ".." removal — the key is an
// identifier, not a filesystem path (spec section 4.11).
func Key(namespace model.LockfileNamespace, path string) string {
	return fmt.Sprintf("%s:%s", namespace, filepath.ToSlash(path))
}

// New returns an empty Document at the current version.
func New() *Document {
	return &Document{Version: currentVersion, files: make(map[string]Entry)}
}

// Get returns the entry for key, if any.
func (d *Document) Get(key string) (Entry, bool) {
	e, ok := d.files[key]
	return e, ok
}

// Set records hash for key, overwriting any prior entry.
func (d *Document) Set(key string, hash model.ContentHash) {
	if d.files == nil {
		d.files = make(map[string]Entry)
	}
	d.files[key] = Entry{Hash: hash}
}

// Delete removes key, if present.
func (d *Document) Delete(key string) {
	delete(d.files, key)
}

// KeysWithPrefix returns every key starting with prefix, sorted, used
// to scope orphan detection to one namespace (spec section 4.11's
// isolation invariant).
func (d *Document) KeysWithPrefix(prefix string) []string {
	var out []string
	for k := range d.files {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Load reads path and returns its Document. A missing file returns an
// empty Document and no error (spec section 4.11: "never fail the run
// on missing lockfile alone").
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, calvinerr.Wrap(calvinerr.KindLockfile, err, "reading lockfile")
	}

	var top map[string]any
	if _, err := toml.Decode(string(raw), &top); err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindLockfile, err, "parsing lockfile TOML")
	}

	doc := &Document{files: make(map[string]Entry), extra: make(map[string]any)}

	if v, ok := top["version"]; ok {
		switch n := v.(type) {
		case int64:
			doc.Version = int(n)
		case int:
			doc.Version = n
		default:
			return nil, calvinerr.New(calvinerr.KindLockfile, "lockfile version field is not an integer")
		}
	} else {
		doc.Version = currentVersion
	}

	if rawFiles, ok := top["files"]; ok {
		filesMap, ok := rawFiles.(map[string]any)
		if !ok {
			return nil, calvinerr.New(calvinerr.KindLockfile, "lockfile files field is malformed")
		}
		for key, v := range filesMap {
			entryMap, ok := v.(map[string]any)
			if !ok {
				continue
			}
			hashStr, _ := entryMap["hash"].(string)
			hash, err := model.ParseContentHash(hashStr)
			if err != nil {
				return nil, calvinerr.Wrap(calvinerr.KindLockfile, err, fmt.Sprintf("lockfile entry %q has an invalid hash", key))
			}
			doc.files[key] = Entry{Hash: hash}
		}
	}

	for k, v := range top {
		if k == "version" || k == "files" {
			continue
		}
		doc.extra[k] = v
	}

	return doc, nil
}

// Save atomically writes doc to path: encode to a sibling temp file in
// the same directory, then rename over the destination (spec section
// 4.11).
func Save(path string, doc *Document) error {
	top := make(map[string]any, len(doc.extra)+2)
	for k, v := range doc.extra {
		top[k] = v
	}

	version := doc.Version
	if version == 0 {
		version = currentVersion
	}
	top["version"] = version

	files := make(map[string]any, len(doc.files))
	for key, entry := range doc.files {
		files[key] = map[string]any{"hash": entry.Hash.String()}
	}
	top["files"] = files

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return calvinerr.Wrap(calvinerr.KindLockfile, err, "creating lockfile directory")
	}

	tmp, err := os.CreateTemp(dir, ".calvin.lock.*.tmp")
	if err != nil {
		return calvinerr.Wrap(calvinerr.KindLockfile, err, "creating temp lockfile")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(top); err != nil {
		tmp.Close()
		return calvinerr.Wrap(calvinerr.KindLockfile, err, "encoding lockfile")
	}
	if err := tmp.Close(); err != nil {
		return calvinerr.Wrap(calvinerr.KindLockfile, err, "closing temp lockfile")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return calvinerr.Wrap(calvinerr.KindLockfile, err, "renaming temp lockfile into place")
	}
	return nil
}
