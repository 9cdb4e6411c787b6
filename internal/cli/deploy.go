package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/config"
	"github.com/64andrewwalker/calvin/internal/deploy"
	"github.com/64andrewwalker/calvin/internal/destination"
	"github.com/64andrewwalker/calvin/internal/events"
	"github.com/64andrewwalker/calvin/internal/layer"
	"github.com/64andrewwalker/calvin/internal/orphan"
	"github.com/64andrewwalker/calvin/internal/plan"
)

const userLayerDefault = ".calvin/.promptpack"

var deployCmd = &cobra.Command{
	Use:   "deploy [project-dir]",
	Short: "Compile the PromptPack and sync compiled output to its destination",
	Long: `Deploy resolves the user and project PromptPack layers (plus any
configured additional layers), compiles every asset for the enabled
targets, plans writes against the destination, resolves conflicts, and
saves the updated lockfile. project-dir defaults to the current
directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().Bool("dry-run", false, "plan and report without writing or touching the lockfile")
	deployCmd.Flags().Bool("force", false, "overwrite every conflicting destination file without prompting")
	deployCmd.Flags().Bool("yes", false, "skip every conflict without prompting")
	deployCmd.Flags().String("remote", "", "deploy to user@host:path instead of the local filesystem")
	deployCmd.Flags().String("orphans", string(orphan.PolicyReportOnly), "orphan handling: report_only, cleanup, cleanup_force")
	deployCmd.Flags().Bool("json", false, "emit the NDJSON event stream on stdout")
	deployCmd.Flags().StringSlice("target", nil, "restrict to these targets (default: configured or all)")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")
	yes, _ := cmd.Flags().GetBool("yes")
	remoteSpec, _ := cmd.Flags().GetString("remote")
	orphanPolicy, _ := cmd.Flags().GetString("orphans")
	asJSON, _ := cmd.Flags().GetBool("json")
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
	for _, v := range config.Validate(resolved.Config) {
		fmt.Fprintln(cmd.ErrOrStderr(), v.Error())
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

	var sink events.Sink = events.NopSink{}
	if asJSON {
		sink = events.NewNDJSONSink(cmd.OutOrStdout())
	}

	mode := plan.ModeInteractive
	switch {
	case force:
		mode = plan.ModeForce
	case yes:
		mode = plan.ModeYes
	}

	opts := deploy.Options{
		Layers:         layers,
		Config:         resolved.Config,
		ProjectDest:    projectDest,
		HomeDest:       homeDest,
		LockfilePath:   filepath.Join(projectDir, ".promptpack", ".calvin.lock"),
		ResolutionMode: mode,
		Prompt:         terminalPrompt(cmd),
		OrphanPolicy:   orphan.Policy(orphanPolicy),
		Force:          force,
		DryRun:         dryRun,
		Sink:           sink,
		Command:        "deploy",
	}

	result, err := deploy.Run(context.Background(), opts)
	if err != nil {
		return err
	}

	if !asJSON {
		printResult(cmd, result)
	}

	if len(result.Conflicts) > 0 || len(result.Errors) > 0 {
		return calvinerr.NewPartial(calvinerr.KindConflict, "deploy finished with unresolved conflicts or errors")
	}
	return nil
}

func defaultUserLayer() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return userLayerDefault
	}
	return filepath.Join(home, userLayerDefault)
}

func resolveDestinations(projectDir, remoteSpec string) (destination.Destination, destination.Destination, error) {
	if remoteSpec != "" {
		dest, err := dialRemote(remoteSpec)
		if err != nil {
			return nil, nil, err
		}
		return dest, dest, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, calvinerr.Wrap(calvinerr.KindIO, err, "resolving home directory")
	}
	return destination.NewLocalProject(projectDir), destination.NewLocalHome(home), nil
}

// terminalPrompt builds an interactive plan.PromptFunc that reads a
// single-letter decision from stdin, shown alongside the diff text when
// the user asks for one. Rendering the diff itself is the resolver's
// job; this function only turns a keypress into a plan.Decision.
func terminalPrompt(cmd *cobra.Command) plan.PromptFunc {
	reader := bufio.NewReader(cmd.InOrStdin())
	return func(item plan.Item, diff string) (plan.Decision, error) {
		if diff != "" {
			fmt.Fprintln(cmd.OutOrStdout(), diff)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: overwrite? [y]es/[n]o/[d]iff/[A]ll/[S]kip-all/[a]bort: ", item.Output.Path)

		line, _ := reader.ReadString('\n')
		switch strings.TrimSpace(line) {
		case "y", "Y":
			return plan.DecisionOverwrite, nil
		case "n", "N":
			return plan.DecisionSkip, nil
		case "d", "D":
			return plan.DecisionDiff, nil
		case "A":
			return plan.DecisionOverwriteAll, nil
		case "S":
			return plan.DecisionSkipAll, nil
		case "a":
			return plan.DecisionAbort, nil
		default:
			return plan.DecisionSkip, nil
		}
	}
}

func printResult(cmd *cobra.Command, result *deploy.Result) {
	out := cmd.OutOrStdout()
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	for _, path := range result.Written {
		fmt.Fprintf(out, "write  %s\n", path)
	}
	for _, path := range result.Skipped {
		fmt.Fprintf(out, "skip   %s\n", path)
	}
	for _, path := range result.Conflicts {
		fmt.Fprintf(out, "conflict  %s\n", path)
	}
	for _, path := range result.OrphansRemoved {
		fmt.Fprintf(out, "remove %s\n", path)
	}
	for _, fe := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error  %s: %s\n", fe.Path, fe.Message)
	}
	fmt.Fprintf(out, "%d written, %d skipped, %d conflicts, %d orphans removed, %d errors\n",
		len(result.Written), len(result.Skipped), len(result.Conflicts), len(result.OrphansRemoved), len(result.Errors))
}
