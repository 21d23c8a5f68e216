package main

import (
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Opens a session and exposes it as a JSON API with server-sent events and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sessionID, root := sessionFlags(cmd)
		nav, err := rt.Open(ctx, sessionID, root)
		if err != nil {
			return err
		}
		defer nav.Close()

		addr := rt.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		handler := httpAdapter.NewHandler(nav,
			httpAdapter.WithLogger(rt.Logger),
			httpAdapter.WithGatherer(rt.Registry),
		)
		return httpAdapter.Serve(ctx, addr, handler, rt.Logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default: http.addr from the configuration)")
}
