package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zrbsprite/cell/internal/page"
)

var (
	renderOutput string
	renderPretty bool
)

var renderCmd = &cobra.Command{
	Use:   "render PAGE",
	Short: "Render a page file to HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := page.Load(args[0])
		if err != nil {
			return err
		}
		tree, err := p.Mount(page.WithLogger(logger))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("pretty") {
			tree.SetPretty(renderPretty)
		} else if cfg.Pretty {
			tree.SetPretty(true)
		}

		var out io.Writer = cmd.OutOrStdout()
		if renderOutput != "" && renderOutput != "-" {
			f, err := os.Create(renderOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := tree.Render(out); err != nil {
			return err
		}
		logger.Info().Str("page", args[0]).Int("nodes", tree.Nodes).Str("output", renderOutput).Msg("rendered")
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write the HTML to a file instead of stdout")
	renderCmd.Flags().BoolVar(&renderPretty, "pretty", false, "indent the HTML output")
	rootCmd.AddCommand(renderCmd)
}
