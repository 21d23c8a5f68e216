package main

import (
	"fmt"
	"os"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint is a navigation state engine",
	Long: `Waypoint keeps a back stack of destinations, plays the transitions between them
and persists it per session.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override log_level from the configuration")
	rootCmd.PersistentFlags().StringP("session", "s", "default", "Session to open")
	rootCmd.PersistentFlags().String("root", "home", "Destination shown by a new session")
}

// loadRuntime reads the configuration named by the flags and wires the runtime.
func loadRuntime(cmd *cobra.Command) (*cli.Runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return cli.NewRuntime(cfg, logging.New(level))
}

func sessionFlags(cmd *cobra.Command) (sessionID, root string) {
	sessionID, _ = cmd.Flags().GetString("session")
	root, _ = cmd.Flags().GetString("root")
	return sessionID, root
}
