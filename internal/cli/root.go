package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerstack/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run attaches the CLI logger to the command context, so
// commands and the packages they call log through the same logger.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Layerstack manages virtual layer groups in style documents",
		Long: `Layerstack edits the layer list of a style document while keeping named
groups of layers together. Groups are tags on layers; layerstack places new and
moved layers so that every group stays one contiguous block.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.file, "file", "f", defaultFile, "style document (.json or .toml)")

	root.AddCommand(c.groupsCommand())
	root.AddCommand(c.groupCommand())
	root.AddCommand(c.layerCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.compactCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
