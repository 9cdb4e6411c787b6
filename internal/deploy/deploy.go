// Package deploy implements the end-to-end deploy use case (spec
// section 4.14): resolve layers, load and merge assets, compile,
// plan against the destination, resolve conflicts, execute writes,
// detect and optionally delete orphans, save the lockfile, and
// return a typed result.
//
// Grounded on the teacher's internal/pipeline.Run orchestration shape
// (a single ordered function stitching independently-testable
// packages together, logging each stage via slog), generalized from
// a context-generation pipeline to a compile-and-sync pipeline.
package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/64andrewwalker/calvin/internal/compiler"
	"github.com/64andrewwalker/calvin/internal/config"
	"github.com/64andrewwalker/calvin/internal/destination"
	"github.com/64andrewwalker/calvin/internal/events"
	"github.com/64andrewwalker/calvin/internal/executor"
	"github.com/64andrewwalker/calvin/internal/layer"
	"github.com/64andrewwalker/calvin/internal/lockfile"
	"github.com/64andrewwalker/calvin/internal/model"
	"github.com/64andrewwalker/calvin/internal/orphan"
	"github.com/64andrewwalker/calvin/internal/plan"
)

// Options configures one deploy run.
type Options struct {
	// Layers lists every source layer to resolve, in increasing
	// precedence order (spec section 4.4): typically the user layer,
	// the project layer, then config.Layers.Additional.
	Layers []layer.Spec

	Config *config.RunConfig

	ProjectDest destination.Destination
	HomeDest    destination.Destination

	// LockfilePath is the project-relative path to the TOML lockfile
	// (spec section 4.11): "<project>/.promptpack/.calvin.lock".
	LockfilePath string

	ResolutionMode plan.ResolutionMode
	Prompt         plan.PromptFunc

	OrphanPolicy orphan.Policy

	// Force upgrades every conflict to a write without consulting the
	// resolver (spec section 4.7).
	Force bool

	// DryRun performs no IO and no lockfile mutation (spec section 4.10).
	DryRun bool

	Sink    events.Sink
	Command string

	// Cancel is polled between executor writes (spec section 5).
	Cancel func() bool
}

// FileErrorResult is one path's non-fatal error, surfaced in Result.
type FileErrorResult struct {
	Path    string
	Message string
}

// Result is the deploy use case's typed outcome (spec section 4.14).
type Result struct {
	Written        []string
	Skipped        []string
	Conflicts      []string
	Errors         []FileErrorResult
	OrphansRemoved []string
	OrphansSkipped []string
	Warnings       []string

	Aborted bool
}

// Run executes the full pipeline: resolve layers → load assets per
// layer → merge → filter by enabled targets → compile → plan against
// destination → resolve conflicts → execute writes → detect orphans
// → optionally delete orphans → save lockfile → emit result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := slog.Default().With("component", "deploy", "command", opts.Command)

	emit(opts.Sink, events.Event{Event: events.Started, Command: opts.Command})

	layerResult, err := layer.Resolve(ctx, opts.Layers)
	if err != nil {
		return nil, fmt.Errorf("resolving layers: %w", err)
	}
	log.Info("layers resolved", "count", len(layerResult.Layers), "assets", len(layerResult.Assets))

	layerRoots := make(map[string]string, len(layerResult.Layers))
	for _, l := range layerResult.Layers {
		layerRoots[l.Name] = l.Path
	}

	runTargets := resolveRunTargets(opts.Config)

	result := &Result{}
	for _, d := range layerResult.Diagnostics {
		if d.Severity == "warning" {
			result.Warnings = append(result.Warnings, d.Message)
		}
	}

	supplemental := supplementalReader(layerRoots)

	secOpts := compiler.SecurityOptions{
		Mode:              model.SecurityMode(opts.Config.Security.Mode),
		AllowNaked:        opts.Config.Security.AllowNaked,
		ProjectConfigured: opts.Config.Security.Deny,
		Excludes:          opts.Config.Security.DenyExclude,
	}

	compiled, err := compiler.CompileWithSecurity(layerResult.Assets, runTargets, supplemental, secOpts)
	if err != nil {
		return nil, fmt.Errorf("compiling assets: %w", err)
	}
	for _, d := range compiled.Diagnostics {
		if d.Severity == "warning" {
			result.Warnings = append(result.Warnings, d.Message)
		}
	}
	emit(opts.Sink, events.Event{Event: events.Compiled, Command: opts.Command, Count: len(compiled.Outputs)})

	dest := NewRouted(opts.ProjectDest, opts.HomeDest)

	doc, err := lockfile.Load(opts.LockfilePath)
	if err != nil {
		return nil, fmt.Errorf("loading lockfile: %w", err)
	}

	builtPlan, err := plan.Build(compiled.Outputs, dest, doc, opts.Force)
	if err != nil {
		return nil, fmt.Errorf("building plan: %w", err)
	}
	for _, item := range builtPlan.Conflicts() {
		emit(opts.Sink, events.Event{Event: events.ItemConflict, Command: opts.Command, Path: item.Output.Path, Class: string(item.Classification)})
	}

	resolved, err := plan.Resolve(builtPlan, opts.ResolutionMode, dest, opts.Prompt)
	if err != nil {
		return nil, fmt.Errorf("resolving conflicts: %w", err)
	}
	for _, item := range resolved.Skips {
		if item.Classification.IsConflict() {
			result.Conflicts = append(result.Conflicts, item.Output.Path)
		}
	}

	execResult := executor.Run(resolved, dest, doc, opts.Sink, opts.Command, opts.DryRun, opts.Cancel)
	result.Written = append(result.Written, execResult.Written...)
	result.Skipped = append(result.Skipped, execResult.Skipped...)
	result.Aborted = execResult.Aborted
	for _, fe := range execResult.Errors {
		result.Errors = append(result.Errors, FileErrorResult{Path: fe.Path, Message: fe.Message})
	}

	producedKeys := make(map[string]bool, len(builtPlan.Items))
	for _, item := range builtPlan.Items {
		producedKeys[item.LockfileKey] = true
	}

	for _, ns := range []model.LockfileNamespace{model.NamespaceProject, model.NamespaceHome} {
		candidates, err := orphan.Detect(doc, ns, producedKeys, dest)
		if err != nil {
			return nil, fmt.Errorf("detecting orphans in %s namespace: %w", ns, err)
		}
		if len(candidates) == 0 {
			continue
		}

		var paths []string
		for _, c := range candidates {
			paths = append(paths, c.Path)
		}
		emit(opts.Sink, events.Event{Event: events.OrphansDetected, Command: opts.Command, Count: len(candidates)})

		if opts.DryRun {
			result.OrphansSkipped = append(result.OrphansSkipped, paths...)
			continue
		}

		orphanResult := orphan.Delete(candidates, opts.OrphanPolicy, dest, doc)
		result.OrphansRemoved = append(result.OrphansRemoved, orphanResult.Removed...)
		result.OrphansSkipped = append(result.OrphansSkipped, orphanResult.Skipped...)
		for _, path := range orphanResult.Removed {
			emit(opts.Sink, events.Event{Event: events.OrphanDeleted, Command: opts.Command, Path: path})
		}
		for _, path := range orphanResult.Skipped {
			emit(opts.Sink, events.Event{Event: events.OrphanSkipped, Command: opts.Command, Path: path})
		}
		for _, fe := range orphanResult.Errors {
			result.Errors = append(result.Errors, FileErrorResult{Path: fe.Path, Message: fe.Message})
		}
	}

	if !opts.DryRun {
		if err := lockfile.Save(opts.LockfilePath, doc); err != nil {
			return nil, fmt.Errorf("saving lockfile: %w", err)
		}
	}

	emit(opts.Sink, events.Event{
		Event:    events.Completed,
		Command:  opts.Command,
		Written:  len(result.Written),
		Skipped:  len(result.Skipped),
		Conflict: len(result.Conflicts),
		Errors:   len(result.Errors),
		Aborted:  result.Aborted,
	})

	return result, nil
}

func resolveRunTargets(cfg *config.RunConfig) []model.Target {
	if cfg == nil || !cfg.Targets.EnabledSet {
		return model.AllTargets()
	}
	targets := make([]model.Target, 0, len(cfg.Targets.Enabled))
	for _, t := range cfg.Targets.Enabled {
		target := model.Target(t)
		if target.Valid() {
			targets = append(targets, target)
		}
	}
	return targets
}

// supplementalReader resolves a skill asset's supplemental file by
// reading it from the layer that contributed the asset (Asset.OriginLayer),
// joined with the asset's SourcePath directory.
func supplementalReader(layerRoots map[string]string) compiler.SupplementalSource {
	return func(asset model.Asset, relPath string) ([]byte, error) {
		root, ok := layerRoots[asset.OriginLayer]
		if !ok {
			return nil, fmt.Errorf("unknown origin layer %q for asset %s", asset.OriginLayer, asset.Identity().String())
		}
		return readSupplemental(root, asset.SourcePath, relPath)
	}
}

func emit(sink events.Sink, e events.Event) {
	if sink == nil {
		return
	}
	_ = sink.Emit(e)
}
