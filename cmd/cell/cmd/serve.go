package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zrbsprite/cell/internal/server"
)

var (
	serveAddr  string
	serveNoHMR bool
)

var serveCmd = &cobra.Command{
	Use:   "serve PAGE",
	Short: "Serve a page file and reload browsers when it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cfg.Serve
		if cmd.Flags().Changed("addr") {
			opts.Addr = serveAddr
		}
		if serveNoHMR {
			opts.HotReload = false
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := termenv.ColorProfile()
		fmt.Fprintf(cmd.ErrOrStderr(), "%s serving %s on %s\n",
			termenv.String("cell").Bold().Foreground(p.Color("#818cf8")),
			args[0],
			termenv.String("http://"+opts.Addr).Underline())

		return server.New(args[0], opts, server.WithLogger(logger)).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoHMR, "no-hmr", false, "disable live reload")
	rootCmd.AddCommand(serveCmd)
}
