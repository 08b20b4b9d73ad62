package commands

import (
	"github.com/spf13/cobra"
	"go.cabin.build/cabin/internal/app"
)

func (c *CLI) newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Synchronize the local package index with the remote repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")

			return c.app.Update(cmd.Context(), app.UpdateOptions{
				Quiet: quiet,
			})
		},
	}
	cmd.Flags().BoolP("quiet", "q", false, "Suppress progress output")
	return cmd
}
