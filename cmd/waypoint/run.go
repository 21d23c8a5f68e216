package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a session interactively",
	Long:  `Opens a session and reads navigation commands from standard input. Type 'help' for the list.`,
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

		opts := []cli.REPLOption{}
		if cli.IsInteractive(os.Stdin) {
			tui.PrintBanner(os.Stdout, waypoint.Version)
			opts = append(opts, cli.WithPrompt(true), cli.WithRenderer(tui.NewRenderer()))
		}

		err = cli.NewREPL(nav, os.Stdout, opts...).Run(ctx, os.Stdin)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.RunE = runCmd.RunE
}
