package commands

import (
	"github.com/spf13/cobra"
	"go.cabin.build/cabin/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <name> <version>",
		Short: "Resolve package metadata from the local index cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			revision, _ := cmd.Flags().GetInt("revision")
			hash, _ := cmd.Flags().GetString("hash")
			tree, _ := cmd.Flags().GetBool("tree")
			quiet, _ := cmd.Flags().GetBool("quiet")

			return c.app.Resolve(cmd.Context(), app.ResolveOptions{
				Package:  args[0],
				Version:  args[1],
				Revision: revision,
				Hash:     hash,
				Tree:     tree,
				Quiet:    quiet,
			})
		},
	}
	cmd.Flags().IntP("revision", "r", -1, "Select a specific cabal file revision (default: latest)")
	cmd.Flags().String("hash", "", "Select the cabal file by its content hash")
	cmd.Flags().BoolP("tree", "t", false, "Also fetch and print the package source tree key")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress progress output")
	return cmd
}
