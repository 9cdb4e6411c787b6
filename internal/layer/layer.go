// Package layer resolves and merges the ordered list of PromptPack
// layers that make up a deploy run (spec section 4.4): the user layer,
// the project layer, and zero or more additional layers, in that
// increasing order of precedence. Each layer is loaded independently
// and concurrently via internal/repository, then merged sequentially
// so the result is deterministic regardless of how fast any one
// layer's filesystem walk completes.
//
// The concurrent-load-then-deterministic-merge split is grounded on
// the teacher's internal/discovery/walker.go (errgroup-bounded content
// loading) paired with internal/config/resolver.go's later-layer-wins
// merge idiom, generalized here from flat config keys to (kind,id)
// asset identities.
package layer

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/ignore"
	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/repository"
)

// Spec names one layer to load, in the order it should be merged.
// Layers later in the slice take precedence over earlier ones.
type Spec struct {
	Name string
	Path string
}

// Summary reports one layer's contribution to a merged run, for
// diagnostics and the deploy result (spec section 3's Layer entity).
type Summary struct {
	Name             string
	Path             string
	LoadedCount      int
	IgnoredCount     int
	ContributedCount int // assets from this layer that survived the merge
	OverriddenCount  int // assets from this layer shadowed by a later layer
}

// Result is the outcome of resolving and merging every layer in a run.
type Result struct {
	Assets      []model.Asset
	Layers      []Summary
	Diagnostics []model.ValidationError
}

type loadOutcome struct {
	spec   Spec
	result *repository.LoadResult
}

// Resolve loads every layer in specs concurrently, then merges them in
// order: an asset in a later layer replaces one with the same (kind,id)
// from an earlier layer. A malformed layer aborts the whole run — there
// is no partial merge result, matching internal/parser's strict-parsing
// contract.
func Resolve(ctx context.Context, specs []Spec) (*Result, error) {
	outcomes := make([]loadOutcome, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			matcher, err := ignore.NewLayerIgnore(spec.Path)
			if err != nil {
				return calvinerr.Wrap(calvinerr.KindIO, err, "loading .calvinignore for layer "+spec.Name)
			}

			loaded, err := repository.Load(spec.Path, matcher)
			if err != nil {
				return err
			}

			outcomes[i] = loadOutcome{spec: spec, result: loaded}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return merge(outcomes), nil
}

// merge applies later-layer-wins semantics across outcomes, which must
// already be in final precedence order (specs[0] is lowest precedence).
func merge(outcomes []loadOutcome) *Result {
	merged := make(map[model.AssetID]model.Asset)
	owner := make(map[model.AssetID]string)
	summaries := make([]Summary, len(outcomes))
	var diagnostics []model.ValidationError

	for i, outcome := range outcomes {
		summaries[i] = Summary{
			Name:         outcome.spec.Name,
			Path:         outcome.spec.Path,
			LoadedCount:  len(outcome.result.Assets),
			IgnoredCount: outcome.result.IgnoredCount,
		}
		diagnostics = append(diagnostics, outcome.result.Diagnostics...)

		for _, asset := range outcome.result.Assets {
			asset.OriginLayer = outcome.spec.Name
			identity := asset.Identity()

			if prevLayer, ok := owner[identity]; ok {
				bumpOverridden(summaries, prevLayer)
			}

			merged[identity] = asset
			owner[identity] = outcome.spec.Name
		}
	}

	for identity, layerName := range owner {
		bumpContributed(summaries, layerName)
		_ = identity
	}

	assets := make([]model.Asset, 0, len(merged))
	for _, a := range merged {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Kind != assets[j].Kind {
			return assets[i].Kind < assets[j].Kind
		}
		return assets[i].ID < assets[j].ID
	})

	return &Result{Assets: assets, Layers: summaries, Diagnostics: diagnostics}
}

func bumpOverridden(summaries []Summary, layerName string) {
	for i := range summaries {
		if summaries[i].Name == layerName {
			summaries[i].OverriddenCount++
			return
		}
	}
}

func bumpContributed(summaries []Summary, layerName string) {
	for i := range summaries {
		if summaries[i].Name == layerName {
			summaries[i].ContributedCount++
			return
		}
	}
}
