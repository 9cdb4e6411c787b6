package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
)

// initStarterConfig is written to a freshly scaffolded PromptPack's
// config.toml (spec section 6's recognized options, defaults only).
const initStarterConfig = `format.version = "1.0"

[security]
mode = "balanced"

[sync]
atomic_writes = true
respect_lockfile = true
`

var initCmd = &cobra.Command{
	Use:   "init [project-dir]",
	Short: "Scaffold an empty PromptPack directory",
	Long: `Init creates the .promptpack directory layout (policies/,
actions/, agents/, skills/) and a starter config.toml. Per spec's
out-of-scope note on init scaffolding, this is a minimal stub: it does
not prompt for project details or generate example assets.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}
	root := filepath.Join(projectDir, ".promptpack")

	for _, sub := range []string{"policies", "actions", "agents", "skills"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return calvinerr.Wrap(calvinerr.KindIO, err, fmt.Sprintf("creating %s directory", sub))
		}
	}

	configPath := filepath.Join(root, "config.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(initStarterConfig), 0o644); err != nil {
			return calvinerr.Wrap(calvinerr.KindIO, err, "writing config.toml")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scaffolded PromptPack at %s\n", root)
	return nil
}
