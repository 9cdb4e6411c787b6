package deploy

import (
	"strings"

	"github.com/64andrewwalker/calvin/internal/destination"
	"github.com/64andrewwalker/calvin/internal/model"
)

// routed dispatches to project or home by a path's "~/" prefix,
// letting the rest of the pipeline (planner, executor, orphan
// detector) work against a single destination.Destination regardless
// of an output's scope (spec section 4.9's "polymorphic destination"
// contract, extended here to cover a run that writes to both scopes
// at once — the common case, since project and user layers can each
// contribute assets of either scope).
type routed struct {
	project destination.Destination
	home    destination.Destination
}

// NewRouted returns a destination.Destination that sends "~/"-prefixed
// paths to home and everything else to project.
func NewRouted(project, home destination.Destination) destination.Destination {
	return &routed{project: project, home: home}
}

func (r *routed) pick(path string) destination.Destination {
	if strings.HasPrefix(path, "~/") {
		return r.home
	}
	return r.project
}

func (r *routed) Exists(path string) (bool, error) { return r.pick(path).Exists(path) }
func (r *routed) Hash(path string) (model.ContentHash, error) {
	return r.pick(path).Hash(path)
}

func (r *routed) Write(path string, content []byte) error { return r.pick(path).Write(path, content) }
func (r *routed) Delete(path string) error                 { return r.pick(path).Delete(path) }

func (r *routed) BatchStatus(paths []string) (map[string]destination.Status, error) {
	var projectPaths, homePaths []string
	for _, p := range paths {
		if strings.HasPrefix(p, "~/") {
			homePaths = append(homePaths, p)
		} else {
			projectPaths = append(projectPaths, p)
		}
	}

	out := make(map[string]destination.Status, len(paths))

	if len(projectPaths) > 0 {
		statuses, err := r.project.BatchStatus(projectPaths)
		if err != nil {
			return nil, err
		}
		for k, v := range statuses {
			out[k] = v
		}
	}
	if len(homePaths) > 0 {
		statuses, err := r.home.BatchStatus(homePaths)
		if err != nil {
			return nil, err
		}
		for k, v := range statuses {
			out[k] = v
		}
	}
	return out, nil
}

func (r *routed) ExpandHome(path string) string { return r.pick(path).ExpandHome(path) }

func (r *routed) ListUnder(prefix string) ([]string, error) {
	if strings.HasPrefix(prefix, "~/") {
		return r.home.ListUnder(prefix)
	}
	return r.project.ListUnder(prefix)
}

// Read implements destination.ContentReader when both halves do,
// used by the conflict resolver's diff view and the orphan detector's
// footer-marker check.
func (r *routed) Read(path string) ([]byte, error) {
	target := r.pick(path)
	reader, ok := target.(destination.ContentReader)
	if !ok {
		return nil, nil
	}
	return reader.Read(path)
}

var (
	_ destination.Destination   = (*routed)(nil)
	_ destination.ContentReader = (*routed)(nil)
)
