package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zrbsprite/cell/internal/page"
)

var inspectPlain bool

var inspectCmd = &cobra.Command{
	Use:   "inspect PAGE",
	Short: "Print the reconciled node tree of a page file",
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

		out := cmd.OutOrStdout()
		if inspectPlain || !isTerminal(out) {
			return tree.Inspect(out)
		}
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			return err
		}
		rendered, err := r.Render(tree.Markdown())
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectPlain, "plain", false, "print plain columns even on a terminal")
	rootCmd.AddCommand(inspectCmd)
}
