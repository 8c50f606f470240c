package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/interpose/internal/app"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Warm the method resolution cache and list its entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			snapshotPath, _ := cmd.Flags().GetString("snapshot")
			return c.app.Inspect(cmd.Context(), app.InspectOptions{
				ConfigPath:   configPath(cmd),
				JSON:         asJSON,
				SnapshotPath: snapshotPath,
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Bool("json", false, "Print the entries as JSON")
	cmd.Flags().String("snapshot", "", "Compare with and save the entries to this snapshot file")
	return cmd
}
