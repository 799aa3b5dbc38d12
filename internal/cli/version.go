package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/ir"
)

// VersionInfo is the JSON payload of the version command.
type VersionInfo struct {
	Engine string `json:"engine"`
	Format string `json:"format"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the engine and hash format versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			info := VersionInfo{Engine: ir.EngineVersion, Format: ir.FormatVersion}
			if f.IsJSON() {
				return f.Success(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fsmjudge %s (hash format %s)\n", info.Engine, info.Format)
			return nil
		},
	}
}
