// Package destination implements the polymorphic write target contract
// (spec section 4.9): LocalProject, LocalHome, and Remote (over SSH).
// Every variant answers the same small set of questions — does this
// path exist, what's its hash, write these bytes atomically, delete,
// batch-status many paths in one round trip, expand "~/", and list
// entries under a prefix — so the planner and executor never branch on
// which kind of destination they're talking to.
package destination

import "github.com/64andrewwalker/calvin/internal/model"

// Status is one path's existence/hash snapshot, as returned by
// BatchStatus (spec section 4.9: "existence + hash in one round
// trip").
type Status struct {
	Exists bool
	Hash   model.ContentHash
}

// Destination is the capability set every write target implements.
type Destination interface {
	// Exists reports whether path currently exists at this destination.
	Exists(path string) (bool, error)

	// Hash returns the content hash of path's current bytes.
	Hash(path string) (model.ContentHash, error)

	// Write writes content to path atomically: a sibling temp file in
	// the same directory, then a rename over the destination.
	Write(path string, content []byte) error

	// Delete removes path.
	Delete(path string) error

	// BatchStatus resolves existence and hash for every path in one
	// round trip (a first-class performance requirement, spec section
	// 4.7).
	BatchStatus(paths []string) (map[string]Status, error)

	// ExpandHome resolves a "~/"-prefixed path to this destination's
	// user root. Paths without the prefix are returned unchanged.
	ExpandHome(path string) string

	// ListUnder enumerates destination entries whose path starts with
	// prefix, used by orphan-scan housekeeping.
	ListUnder(prefix string) ([]string, error)
}

// ContentReader is an optional capability for destinations that can
// return a path's raw bytes, used by the conflict resolver's diff
// view (spec section 4.8). Not part of the core Destination contract
// because the planner and executor never need raw content, only
// existence and hash.
type ContentReader interface {
	Read(path string) ([]byte, error)
}
