// Package cli implements the Cobra command hierarchy for the calvin CLI
// tool. The root command defined here is the entry point for every
// subcommand and handles cross-cutting concerns like logging
// initialization and exit-code extraction. Per spec section 1's
// out-of-scope note, this package defines a minimal command surface
// (deploy, plan, init, config show, version, completion) rather than
// full flag coverage or terminal animation.
package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/config"
)

// ExitInvalidArgs is returned for Cobra-level argument/flag errors
// (spec section 6: "2 invalid arguments"). It shares a numeral with
// calvinerr.ExitPartial but a different meaning: ExitPartial marks a
// run that completed with some per-file failures, ExitInvalidArgs
// marks a run that never started.
const ExitInvalidArgs = 2

var rootCmd = &cobra.Command{
	Use:   "calvin",
	Short: "Compile and deploy PromptPack assets to AI coding assistants.",
	Long: `Calvin compiles a PromptPack — Markdown sources with YAML frontmatter
describing policies, actions, agents, and skills — into the native
configuration formats of claude-code, cursor, vscode, antigravity, and
codex, then syncs the compiled output to a project or remote destination
with conflict detection and a content-hashed lockfile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")

		level := config.ResolveLogLevel(verbose, quiet)
		format := config.ResolveLogFormat()
		config.SetupLogging(level, format)

		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "only log errors")
}

// Execute runs the root command and returns the process exit code. A
// *calvinerr.CalvinError's Code is used directly; any other non-nil
// error returned before a subcommand's RunE (a bad flag, an unknown
// command) is treated as an invalid-arguments failure.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return extractExitCode(err)
	}
	return calvinerr.ExitSuccess
}

func extractExitCode(err error) int {
	if err == nil {
		return calvinerr.ExitSuccess
	}
	var calvinErr *calvinerr.CalvinError
	if errors.As(err, &calvinErr) {
		return calvinErr.Code
	}
	return ExitInvalidArgs
}

// RootCmd returns the root cobra.Command, for use in tests and by
// cmd/calvin's main.
func RootCmd() *cobra.Command {
	return rootCmd
}
