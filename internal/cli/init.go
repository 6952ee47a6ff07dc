package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prophecies/internal/paths"
	"github.com/mesh-intelligence/prophecies/internal/workbook"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml and create an empty workbook",
		Long: "Create the configuration directory and config.yaml from the current\n" +
			"flags and environment, then create the workbook when a path is set\n" +
			"and the file does not exist yet. Existing files are left alone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	cfg, dir, err := a.loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ExitError{Code: exitSysError, Err: fmt.Errorf("create config directory: %w", err)}
	}
	wrote, err := writeConfigIfMissing(dir, cfg)
	if err != nil {
		return &ExitError{Code: exitSysError, Err: fmt.Errorf("write config: %w", err)}
	}
	if wrote {
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(dir, paths.ConfigFileName))
	}

	created, err := workbook.Create(cfg)
	if err != nil {
		return &ExitError{Code: exitSysError, Err: fmt.Errorf("create workbook: %w", err)}
	}
	if created {
		fmt.Fprintf(out, "Created %s workbook %s\n", cfg.Backend, cfg.Workbook)
	}

	fmt.Fprintln(out, "Bridge initialized successfully")
	return nil
}
