package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/config"
	"github.com/64andrewwalker/calvin/internal/deploy"
	"github.com/64andrewwalker/calvin/internal/events"
	"github.com/64andrewwalker/calvin/internal/layer"
	"github.com/64andrewwalker/calvin/internal/orphan"
	"github.com/64andrewwalker/calvin/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan [project-dir]",
	Short: "Report what deploy would write, skip, or flag as a conflict",
	Long: `Plan runs the same pipeline as deploy with --dry-run and no
interactive prompting: nothing is written, the lockfile is untouched,
and every conflict is reported rather than resolved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("remote", "", "plan against user@host:path instead of the local filesystem")
	planCmd.Flags().StringSlice("target", nil, "restrict to these targets (default: configured or all)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	remoteSpec, _ := cmd.Flags().GetString("remote")
	targets, _ := cmd.Flags().GetStringSlice("target")

	cliFlags := map[string]any{}
	if len(targets) > 0 {
		cliFlags["targets.enabled"] = targets
		cliFlags["targets.enabled_set"] = true
	}

	resolved, err := config.Resolve(config.ResolveOptions{ProjectDir: projectDir, CLIFlags: cliFlags})
	if err != nil {
		return calvinerr.Wrap(calvinerr.KindConfig, err, "resolving configuration")
	}

	layers := []layer.Spec{
		{Name: "user", Path: defaultUserLayer()},
		{Name: "project", Path: filepath.Join(projectDir, ".promptpack")},
	}
	for i, p := range resolved.Config.Layers.Additional {
		layers = append(layers, layer.Spec{Name: fmt.Sprintf("additional-%d", i), Path: p})
	}

	projectDest, homeDest, err := resolveDestinations(projectDir, remoteSpec)
	if err != nil {
		return err
	}

	result, err := deploy.Run(context.Background(), deploy.Options{
		Layers:         layers,
		Config:         resolved.Config,
		ProjectDest:    projectDest,
		HomeDest:       homeDest,
		LockfilePath:   filepath.Join(projectDir, ".promptpack", ".calvin.lock"),
		ResolutionMode: plan.ModeYes,
		OrphanPolicy:   orphan.PolicyReportOnly,
		DryRun:         true,
		Sink:           events.NopSink{},
		Command:        "plan",
	})
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}
