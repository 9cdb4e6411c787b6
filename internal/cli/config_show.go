package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration inspection commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show [project-dir]",
	Short: "Show the fully resolved configuration with per-field sources",
	Long: `Show prints every RunConfig field alongside the layer that
supplied its value: default, global config, project config, env var,
or CLI flag (spec section 6's five-layer resolution order).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	resolved, err := config.Resolve(config.ResolveOptions{ProjectDir: projectDir})
	if err != nil {
		return calvinerr.Wrap(calvinerr.KindConfig, err, "resolving configuration")
	}

	out := cmd.OutOrStdout()
	cfg := resolved.Config
	fields := map[string]any{
		"security.mode":          cfg.Security.Mode,
		"security.allow_naked":   cfg.Security.AllowNaked,
		"security.deny":          cfg.Security.Deny,
		"security.deny_exclude":  cfg.Security.DenyExclude,
		"targets.enabled":        cfg.Targets.Enabled,
		"sync.atomic_writes":     cfg.Sync.AtomicWrites,
		"sync.respect_lockfile":  cfg.Sync.RespectLockfile,
		"output.verbosity":       cfg.Output.Verbosity,
		"layers.additional":      cfg.Layers.Additional,
	}

	for _, key := range []string{
		"security.mode", "security.allow_naked", "security.deny", "security.deny_exclude",
		"targets.enabled", "sync.atomic_writes", "sync.respect_lockfile",
		"output.verbosity", "layers.additional",
	} {
		source := resolved.Sources[key]
		fmt.Fprintf(out, "%-24s = %-30v (%s)\n", key, fields[key], source.String())
	}

	for _, v := range config.Validate(cfg) {
		fmt.Fprintln(cmd.ErrOrStderr(), v.Error())
	}

	return nil
}
