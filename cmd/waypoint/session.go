package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sessions, err := rt.Sessions.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Println("Sessions:")
		for _, s := range sessions {
			fmt.Println("- " + s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the back stack of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			saved, err := rt.Sessions.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", sessionID, err)
			}
			data, err := json.MarshalIndent(saved, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling session: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if _, err := rt.Sessions.Load(cmd.Context(), sessionID); err != nil {
			return fmt.Errorf("error loading session '%s': %w", sessionID, err)
		}
		_, root := sessionFlags(cmd)
		nav, err := rt.Open(cmd.Context(), sessionID, root)
		if err != nil {
			return err
		}
		defer nav.Close()

		out, err := tui.RenderStack(tui.NewRenderer(), nav.Snapshot())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			args, err = rt.Sessions.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
		}
		if len(args) == 0 {
			return errors.New("no sessions given, pass ids or --all")
		}

		var errs []error
		for _, sessionID := range args {
			if err := rt.Sessions.Delete(cmd.Context(), sessionID); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", sessionID, err))
				continue
			}
			fmt.Printf("Removed session '%s'\n", sessionID)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().Bool("raw", false, "Print the stored snapshot as JSON")
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}
