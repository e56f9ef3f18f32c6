package main

import (
	"fmt"

	"github.com/aretw0/sitepass/internal/presentation/graph"
	"github.com/aretw0/sitepass/internal/presentation/tui"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the conversation state machine",
	Long:  `Outputs a Mermaid diagram (graph TD) of the conversation status transitions, or a table with --table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		edges := domain.Transitions()

		if table, _ := cmd.Flags().GetBool("table"); table {
			return printer(cmd).Print(tui.TransitionTable(edges), edges)
		}

		selfLoops, _ := cmd.Flags().GetBool("self-loops")
		var overlay *graph.GraphOverlay
		if current, _ := cmd.Flags().GetString("current"); current != "" {
			overlay = &graph.GraphOverlay{CurrentStatus: domain.ParseStatus(current)}
		}

		// Generate and print Mermaid graph
		output := graph.GenerateMermaid(edges, graph.Options{SelfLoops: selfLoops}, overlay)
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("self-loops", false, "Include transitions that keep the status unchanged")
	graphCmd.Flags().String("current", "", "Highlight a status")
	graphCmd.Flags().Bool("table", false, "Print the transitions as a table instead of Mermaid")
}
