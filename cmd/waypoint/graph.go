package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the back stack of a session as a diagram",
	Long:  `Opens the session and outputs a Mermaid diagram (graph LR) of its back stack.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sessionID, root := sessionFlags(cmd)
		nav, err := rt.Open(cmd.Context(), sessionID, root)
		if err != nil {
			return err
		}
		defer nav.Close()

		fmt.Print(graph.GenerateMermaid(nav.Snapshot()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
