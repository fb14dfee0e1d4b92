package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/wire"
)

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := wire.StatsService().GetStats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			header := color.New(color.FgHiCyan, color.Bold)
			fmt.Println()
			header.Println("agentdb")
			fmt.Printf("  Issues:        %d (%s open, %s solved)\n",
				stats.Issues,
				color.New(color.FgYellow).Sprintf("%d", stats.OpenIssues),
				color.New(color.FgHiGreen).Sprintf("%d", stats.SolvedIssues))
			fmt.Printf("  Solutions:     %d\n", stats.Solutions)
			fmt.Printf("  Verifications: %d\n", stats.Verifications)
			fmt.Printf("  Contributors:  %d\n", stats.Contributors)
			fmt.Println()
			return nil
		},
	}
}
