package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the bridge release, overridable at link time with
// -ldflags "-X github.com/mesh-intelligence/prophecies/internal/cli.Version=...".
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/prophecies"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bridge version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "bridge v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
